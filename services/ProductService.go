package services

import (
	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/repository"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "services")

type ProductService struct {
	pr repository.ProductRepository
	cr repository.CategoryRepository
}

func NewProductService(pRepo repository.ProductRepository, catRepo repository.CategoryRepository) ProductService {
	return ProductService{
		pr: pRepo,
		cr: catRepo,
	}
}

func (ps *ProductService) GetProductById(prodId int) (pEnt entities.Product, err error) {
	var pModel models.Product_db
	var opts []entities.ProductOption
	var cat entities.Category
	var exists bool
	pModel, exists, err = ps.pr.GetProductById(prodId)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFoundError
		return
	}
	opts, err = ps.pr.GetProductOptions(prodId)
	if err != nil {
		return
	}
	cat, err = ps.pr.GetProductCategory(prodId)
	if err != nil {
		return
	}
	pEnt.Id = pModel.Id
	pEnt.Name = pModel.Name
	pEnt.Price = pModel.Price
	pEnt.Description = pModel.Description.String
	pEnt.Available = pModel.Available
	pEnt.Options = opts
	pEnt.Category = cat
	return
}

func (ps *ProductService) CreateProduct(pModel models.Product) (err error) {
	err = ps.pr.CreateProduct(pModel)
	return
}

func (ps *ProductService) UpdateProductById(pModel models.Product) (pNewModel models.Product_db, err error) {
	pNewModel, err = ps.pr.UpdateProductById(pModel)
	return
}

func (ps *ProductService) SetProductOption(prodId int, opt entities.ProductOption) (err error) {
	_, exists, e := ps.pr.GetProductById(prodId)
	if e != nil {
		err = e
		return
	}
	if !exists {
		log.Error("SetProductOption: product does not exist")
		err = models.ErrNotAllowed
		return
	}
	err = ps.pr.SetProductOption(prodId, opt)
	return
}

func (ps *ProductService) RemoveProductOption(prodId int, optionName string) (err error) {
	if optionName == "" {
		log.Error("RemoveProductOption: option name is required")
		err = models.ErrBadRequest
		return
	}
	removed, e := ps.pr.RemoveProductOption(prodId, optionName)
	if e != nil {
		err = e
		return
	}
	if !removed {
		err = models.ErrNotFoundError
	}
	return
}

func (ps *ProductService) UpdateProductCategory(prodId int, cat entities.Category) (err error) {
	var ex bool
	_, ex, err = ps.pr.GetProductById(prodId)
	if err != nil {
		return
	}
	if !ex {
		log.Error("UpdateProductCategory: product does not exist")
		err = models.ErrNotAllowed
		return
	}
	ex, err = ps.cr.CategoryExist(cat.Id)
	if err != nil {
		return
	}
	if !ex {
		log.Error("UpdateProductCategory: category does not exist")
		err = models.ErrNotAllowed
		return
	}
	err = ps.pr.SetProductCategory(prodId, cat)
	return
}

func (ps *ProductService) RemoveProductCategory(prodId int) (err error) {
	var ex bool
	_, ex, err = ps.pr.GetProductById(prodId)
	if err != nil {
		return
	}
	if !ex {
		log.Error("RemoveProductCategory: product does not exist")
		err = models.ErrNotAllowed
		return
	}
	err = ps.pr.RemoveProductCategory(prodId)
	return
}
