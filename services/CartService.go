package services

import (
	"foodOrder/cart"
	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/repository"

	"github.com/google/uuid"
)

type CartService struct {
	pr repository.ProductRepository
	cr repository.CartRepository
}

func NewCartService(productRepo repository.ProductRepository, cartRepo repository.CartRepository) CartService {
	return CartService{
		pr: productRepo,
		cr: cartRepo,
	}
}

func (cs *CartService) CreateCartSession() (cartSessionId string, err error) {
	cartSessionId = uuid.NewString()
	err = cs.cr.SetCart(cartSessionId, cart.New())
	return
}

func (cs *CartService) GetCart(cartSessionId string) (res cart.Cart, err error) {
	res, err = cs.cr.GetCart(cartSessionId)
	return
}

func (cs *CartService) AddCartItem(cartSessionId string, req models.CartAddRequest) (res cart.Cart, err error) {
	p, ex, e := cs.pr.GetProductById(req.ProductId)
	if e != nil {
		err = e
		return
	}
	if !ex {
		log.Error("AddCartItem: product does not exist")
		err = models.ErrBadRequest
		return
	}
	if !p.Available {
		log.Error("AddCartItem: product is not available")
		err = models.ErrNotAllowed
		return
	}
	err = cs.validateOptions(req.ProductId, req.Options)
	if err != nil {
		return
	}

	res, err = cs.cr.GetCart(cartSessionId)
	if err != nil {
		return
	}
	prod := entities.Product{
		Id:    p.Id,
		Name:  p.Name,
		Price: p.Price,
	}
	res = res.AddItem(prod, req.Options, req.Observation)
	err = cs.cr.SetCart(cartSessionId, res)
	return
}

func (cs *CartService) UpdateCartItem(cartSessionId string, req models.CartUpdateRequest) (res cart.Cart, err error) {
	res, err = cs.cr.GetCart(cartSessionId)
	if err != nil {
		return
	}
	res = res.UpdateQuantity(req.ProductId, req.Options, req.Delta)
	err = cs.cr.SetCart(cartSessionId, res)
	return
}

func (cs *CartService) RemoveCartItem(cartSessionId string, productId int, options map[string]string) (res cart.Cart, err error) {
	res, err = cs.cr.GetCart(cartSessionId)
	if err != nil {
		return
	}
	res = res.RemoveItem(productId, options)
	err = cs.cr.SetCart(cartSessionId, res)
	return
}

func (cs *CartService) ApplyDiscount(cartSessionId string, amount float64, code string) (res cart.Cart, err error) {
	res, err = cs.cr.GetCart(cartSessionId)
	if err != nil {
		return
	}
	if len(res.Items) == 0 {
		log.Error("ApplyDiscount: cart is empty")
		err = models.ErrNotAllowed
		return
	}
	res = res.ApplyDiscount(amount, code)
	err = cs.cr.SetCart(cartSessionId, res)
	return
}

func (cs *CartService) ClearCart(cartSessionId string) (err error) {
	err = cs.cr.SetCart(cartSessionId, cart.New())
	return
}

func (cs *CartService) CheckCart(cartSessionId string) (hasItems bool, err error) {
	c, e := cs.cr.GetCart(cartSessionId)
	if e != nil {
		err = e
		return
	}
	hasItems = len(c.Items) > 0
	return
}

// validateOptions rejects selections naming an option the product does not
// have, or a value outside the option's allowed list.
func (cs *CartService) validateOptions(productId int, selected map[string]string) (err error) {
	if len(selected) == 0 {
		return
	}
	opts, e := cs.pr.GetProductOptions(productId)
	if e != nil {
		err = e
		return
	}
	allowed := make(map[string]map[string]bool, len(opts))
	for _, opt := range opts {
		vals := make(map[string]bool, len(opt.Values))
		for _, v := range opt.Values {
			vals[v] = true
		}
		allowed[opt.Name] = vals
	}
	for name, value := range selected {
		vals, ok := allowed[name]
		if !ok {
			log.Errorf("validateOptions: unknown option %q", name)
			err = models.ErrBadRequest
			return
		}
		if !vals[value] {
			log.Errorf("validateOptions: value %q not allowed for option %q", value, name)
			err = models.ErrBadRequest
			return
		}
	}
	return
}
