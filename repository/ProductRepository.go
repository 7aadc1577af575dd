package repository

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"foodOrder/entities"
	"foodOrder/models"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "repository")

type ProductRepository interface {
	GetProductById(id int) (pModel models.Product_db, exists bool, err error)
	GetProductsByCategory(catId int) (prods []entities.ProductPreview, err error)
	UpdateProductById(pModel models.Product) (updatedProd models.Product_db, err error)
	CreateProduct(pModel models.Product) (err error)
	GetProductCategory(prodId int) (cat entities.Category, err error)
	SetProductCategory(prodId int, cat entities.Category) (err error)
	RemoveProductCategory(prodId int) (err error)
	GetProductOptions(prodId int) (opts []entities.ProductOption, err error)
	SetProductOption(prodId int, opt entities.ProductOption) (err error)
	RemoveProductOption(prodId int, optionName string) (removed bool, err error)
}

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepository(conn *sql.DB) (ProductRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &ProductRepo{
		db: conn,
	}, nil
}

func (p *ProductRepo) GetProductById(id int) (pModel models.Product_db, exists bool, err error) {
	row := p.db.QueryRow("SELECT Id, Name, Price, Description, Available FROM Products WHERE Id = $1", id)
	err = row.Scan(&pModel.Id, &pModel.Name, &pModel.Price, &pModel.Description, &pModel.Available)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
		} else {
			log.Errorf("GetProductById: %v", err)
			err = models.ErrServerError
		}
		return
	}
	exists = true
	return
}

func (p *ProductRepo) GetProductCategory(prodId int) (cat entities.Category, err error) {
	row := p.db.QueryRow("SELECT Categories.Id, Categories.Name FROM ProductsCategories JOIN Categories ON ProductsCategories.CategoryId=Categories.Id WHERE ProductsCategories.ProductId=$1", prodId)
	err = row.Scan(&cat.Id, &cat.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
		} else {
			log.Errorf("GetProductCategory: %v", err)
			err = models.ErrServerError
		}
	}
	return
}

func (p *ProductRepo) SetProductCategory(prodId int, cat entities.Category) (err error) {
	var curCatId int
	row := p.db.QueryRow("SELECT ProductsCategories.CategoryId FROM ProductsCategories WHERE ProductsCategories.ProductId=$1", prodId)
	err = row.Scan(&curCatId)
	if err != nil {
		if err == sql.ErrNoRows {
			_, err = p.db.Exec("INSERT INTO ProductsCategories (ProductId, CategoryId) VALUES ($1, $2)", prodId, cat.Id)
			if err != nil {
				log.Errorf("SetProductCategory[1]: %v", err)
				err = models.ErrServerError
			}
			return
		}
		log.Errorf("SetProductCategory[2]: %v", err)
		err = models.ErrServerError
		return
	}
	_, err = p.db.Exec("UPDATE ProductsCategories SET CategoryId =$1 WHERE ProductsCategories.ProductId=$2", cat.Id, prodId)
	if err != nil {
		log.Errorf("SetProductCategory[3]: %v", err)
		err = models.ErrServerError
	}
	return
}

func (p *ProductRepo) RemoveProductCategory(prodId int) (err error) {
	_, err = p.db.Exec("DELETE FROM ProductsCategories WHERE ProductsCategories.ProductId=$1", prodId)
	if err != nil {
		log.Errorf("RemoveProductCategory: %v", err)
		err = models.ErrServerError
	}
	return
}

func (p *ProductRepo) GetProductsByCategory(catId int) (prods []entities.ProductPreview, err error) {
	rows, e := p.db.Query("SELECT Id, Name, Price, Available FROM Products JOIN ProductsCategories ON ProductsCategories.ProductId=Products.Id WHERE ProductsCategories.CategoryId =$1", catId)
	if e != nil {
		log.Errorf("GetProductsByCategory[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	for rows.Next() {
		prod := entities.ProductPreview{}
		err = rows.Scan(&prod.Id, &prod.Name, &prod.Price, &prod.Available)
		if err != nil {
			log.Errorf("GetProductsByCategory[2]: %v", err)
			err = models.ErrServerError
			return
		}
		prods = append(prods, prod)
	}
	if e := rows.Err(); e != nil {
		log.Errorf("GetProductsByCategory[3]: %v", e)
		err = models.ErrServerError
	}
	return
}

// GetProductOptions lists the configurable choices for a dish, e.g. size or
// spice level. Allowed values are stored comma separated.
func (p *ProductRepo) GetProductOptions(prodId int) (opts []entities.ProductOption, err error) {
	rows, e := p.db.Query("SELECT Id, Name, Vals FROM ProductOptions WHERE ProductId =$1 ORDER BY Name", prodId)
	if e != nil {
		log.Errorf("GetProductOptions[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	for rows.Next() {
		opt := entities.ProductOption{}
		var vals string
		err = rows.Scan(&opt.Id, &opt.Name, &vals)
		if err != nil {
			log.Errorf("GetProductOptions[2]: %v", err)
			err = models.ErrServerError
			return
		}
		if vals != "" {
			opt.Values = strings.Split(vals, ",")
		}
		opts = append(opts, opt)
	}
	if e := rows.Err(); e != nil {
		log.Errorf("GetProductOptions[3]: %v", e)
		err = models.ErrServerError
	}
	return
}

func (p *ProductRepo) SetProductOption(prodId int, opt entities.ProductOption) (err error) {
	if opt.Name == "" || len(opt.Values) == 0 {
		log.Error("SetProductOption: option name and values are required")
		err = models.ErrNotAllowed
		return
	}
	vals := strings.Join(opt.Values, ",")

	var curId int
	row := p.db.QueryRow("SELECT Id FROM ProductOptions WHERE ProductId=$1 AND Name=$2", prodId, opt.Name)
	err = row.Scan(&curId)
	if err != nil {
		if err == sql.ErrNoRows {
			_, err = p.db.Exec("INSERT INTO ProductOptions (ProductId, Name, Vals) VALUES ($1, $2, $3)", prodId, opt.Name, vals)
			if err != nil {
				log.Errorf("SetProductOption[1]: %v", err)
				err = models.ErrServerError
			}
			return
		}
		log.Errorf("SetProductOption[2]: %v", err)
		err = models.ErrServerError
		return
	}
	_, err = p.db.Exec("UPDATE ProductOptions SET Vals=$1 WHERE Id=$2", vals, curId)
	if err != nil {
		log.Errorf("SetProductOption[3]: %v", err)
		err = models.ErrServerError
	}
	return
}

func (p *ProductRepo) RemoveProductOption(prodId int, optionName string) (removed bool, err error) {
	res, e := p.db.Exec("DELETE FROM ProductOptions WHERE ProductId=$1 AND Name=$2", prodId, optionName)
	if e != nil {
		log.Errorf("RemoveProductOption: %v", e)
		err = models.ErrServerError
		return
	}
	n, _ := res.RowsAffected()
	removed = n > 0
	return
}

func (p *ProductRepo) UpdateProductById(pModel models.Product) (updatedProd models.Product_db, err error) {
	var ex bool
	_, ex, err = p.GetProductById(pModel.Id)
	if err != nil {
		return
	}
	if !ex {
		log.Error("UpdateProductById: product does not exist")
		err = models.ErrNotAllowed
		return
	}

	queryParams := make([]any, 0, 5)
	query := "UPDATE Products SET "
	count := 0
	if isValidLen(pModel.Name, 3, 40) && isValidString(pModel.Name) {
		count++
		query = query + "Name = " + placeholder(count) + ", "
		queryParams = append(queryParams, pModel.Name)
	}
	if pModel.Price > 0 {
		count++
		query = query + "Price = " + placeholder(count) + ", "
		queryParams = append(queryParams, pModel.Price)
	}
	if isValidLen(pModel.Description, 5, 200) && isValidString(pModel.Description) {
		count++
		query = query + "Description = " + placeholder(count) + ", "
		queryParams = append(queryParams, pModel.Description)
	}
	if pModel.Available != nil {
		count++
		query = query + "Available = " + placeholder(count) + ", "
		queryParams = append(queryParams, *pModel.Available)
	}
	if count == 0 {
		err = models.ErrBadRequest
		return
	}
	query = query[0 : len(query)-2]
	count++
	query = query + " WHERE Id = " + placeholder(count)
	queryParams = append(queryParams, pModel.Id)
	_, e := p.db.Exec(query, queryParams...)
	if e != nil {
		log.Errorf("UpdateProductById: %v", e)
		err = models.ErrServerError
		return
	}

	updatedProd, _, err = p.GetProductById(pModel.Id)
	if err != nil {
		return
	}
	return updatedProd, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func isValidLen(input string, minLen int, maxLen int) bool {
	inputLen := len([]rune(input))
	if inputLen < minLen || inputLen > maxLen {
		return false
	}
	return true
}

func isValidString(input string) bool {
	allowedSymbols := map[rune]bool{
		'-': true,
		' ': true,
		':': true,
		'.': true,
		',': true,
		'"': true,
	}
	for _, char := range input {
		if !(unicode.IsLetter(char) || unicode.IsDigit(char) || allowedSymbols[char]) {
			return false
		}
	}
	return true
}

func (p *ProductRepo) CreateProduct(pModel models.Product) (err error) {
	if !isValidLen(pModel.Name, 3, 40) || !isValidString(pModel.Name) {
		log.Error("CreateProduct: name field is invalid")
		err = models.ErrNotAllowed
		return
	}
	if pModel.Price <= 0 {
		log.Error("CreateProduct: price field is invalid")
		err = models.ErrNotAllowed
		return
	}
	if !isValidLen(pModel.Description, 5, 200) || !isValidString(pModel.Description) {
		log.Error("CreateProduct: description field is invalid")
		err = models.ErrNotAllowed
		return
	}
	if pModel.Available == nil {
		log.Error("CreateProduct: available field is invalid")
		err = models.ErrNotAllowed
		return
	}
	_, e := p.db.Exec("INSERT INTO Products (Name, Price, Description, Available) VALUES ($1, $2, $3, $4)",
		pModel.Name, pModel.Price, pModel.Description, *pModel.Available)
	if e != nil {
		log.Errorf("CreateProduct: %v", e)
		err = models.ErrServerError
	}
	return
}
