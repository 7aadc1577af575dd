package services

import (
	"database/sql"
	"encoding/json"
	"time"

	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/payment"
	"foodOrder/repository"
	"foodOrder/ws"

	"github.com/pkg/errors"
)

type OrderService struct {
	sr  repository.SessionRepository
	pr  repository.ProductRepository
	cr  repository.CartRepository
	or  repository.OrderRepository
	cps CouponService
	gw  payment.Gateway
	hub *ws.Hub
}

func NewOrderService(sessionRepo repository.SessionRepository, productRepo repository.ProductRepository,
	cartRepo repository.CartRepository, orderRepo repository.OrderRepository,
	couponService CouponService, gateway payment.Gateway, hub *ws.Hub) OrderService {
	return OrderService{
		sr:  sessionRepo,
		pr:  productRepo,
		cr:  cartRepo,
		or:  orderRepo,
		cps: couponService,
		gw:  gateway,
		hub: hub,
	}
}

// Checkout turns the cart into a paid order. Prices come from the catalog at
// this moment, never from the stored cart, and the coupon is validated again,
// so nothing the client held on to can change what gets charged.
func (ors *OrderService) Checkout(sessionId string, cartSessionId string, paymentToken string) (order entities.Order, err error) {
	uId, _, _, e := ors.sr.GetUserSessionInfo(sessionId)
	if e != nil {
		err = e
		return
	}
	crt, e := ors.cr.GetCart(cartSessionId)
	if e != nil {
		err = e
		return
	}
	if len(crt.Items) == 0 {
		log.Error("Checkout: cart is empty")
		err = models.ErrBadRequest
		return
	}
	if paymentToken == "" {
		log.Error("Checkout: payment token is required")
		err = models.ErrBadRequest
		return
	}

	prods := []models.OrdersProducts_db{}
	var subtotal float64
	for _, item := range crt.Items {
		p, ex, e := ors.pr.GetProductById(item.ProductId)
		if e != nil {
			err = e
			return
		}
		if !ex || !p.Available {
			log.Errorf("Checkout: product %d is unavailable", item.ProductId)
			err = models.ErrNotAllowed
			return
		}
		opts := "{}"
		if len(item.Options) > 0 {
			raw, e := json.Marshal(item.Options)
			if e != nil {
				log.Errorf("Checkout: marshal options: %v", e)
				err = models.ErrServerError
				return
			}
			opts = string(raw)
		}
		prods = append(prods, models.OrdersProducts_db{
			ProductId: p.Id,
			Quantity:  item.Quantity,
			Price:     p.Price,
			Options:   opts,
		})
		subtotal = subtotal + float64(item.Quantity)*p.Price
	}

	var discount float64
	var couponCode sql.NullString
	if crt.CouponCode != "" {
		coupon, e := ors.cps.ValidateCoupon(crt.CouponCode)
		if e != nil {
			err = e
			return
		}
		discount = coupon.Discount
		couponCode = sql.NullString{String: coupon.Code, Valid: true}
	}

	totalPrice := subtotal + crt.DeliveryFee - discount
	if totalPrice < 0 {
		totalPrice = 0
	}

	charge, e := ors.gw.Charge(payment.ChargeRequest{
		Amount:       totalPrice,
		Currency:     "USD",
		PaymentToken: paymentToken,
		Description:  "food order",
	})
	if e != nil {
		var declined *payment.DeclinedError
		if errors.As(e, &declined) {
			log.Errorf("Checkout: payment declined: %s", declined.Reason)
			err = models.ErrPaymentDeclined
			return
		}
		log.Errorf("Checkout: charge: %v", e)
		err = models.ErrServerError
		return
	}

	newOrder := models.Order_db{
		UserId:      uId,
		Date:        time.Now().UTC(),
		Subtotal:    subtotal,
		DeliveryFee: crt.DeliveryFee,
		Discount:    discount,
		CouponCode:  couponCode,
		TotalPrice:  totalPrice,
		Status:      "created",
		PaymentRef:  sql.NullString{String: charge.ChargeRef, Valid: true},
	}
	orderId, e := ors.or.CreateOrder(newOrder)
	if e != nil {
		err = e
		return
	}
	err = ors.or.SetOrderItems(orderId, prods)
	if err != nil {
		return
	}
	if e := ors.cr.DeleteCart(cartSessionId); e != nil {
		log.Errorf("Checkout: clear cart: %v", e)
	}

	ors.hub.Broadcast(ws.OrderCreatedEvent{
		OrderId: orderId,
		Status:  "created",
		Total:   totalPrice,
	})

	order, err = ors.or.GetOrderById(orderId)
	return
}

func (ors *OrderService) GetOrderById(orderId int) (order entities.Order, err error) {
	order, err = ors.or.GetOrderById(orderId)
	return
}

func (ors *OrderService) SearchOrders(data models.OrderSearchData) (orders []entities.Order, err error) {
	orders, err = ors.or.SearchOrders(data)
	return
}

func (ors *OrderService) GetCurrentUserOrders(sessionId string) (orders []entities.Order, err error) {
	userId, _, _, e := ors.sr.GetUserSessionInfo(sessionId)
	if e != nil {
		log.Errorf("GetCurrentUserOrders: %v", e)
		err = models.ErrServerError
		return
	}
	data := models.OrderSearchData{
		UserId: &userId,
	}
	orders, err = ors.or.SearchOrders(data)
	return
}

func (ors *OrderService) SetOrderStatus(orderId int, status string) (err error) {
	err = ors.or.SetOrderStatus(orderId, status)
	if err != nil {
		return
	}
	ors.hub.Broadcast(ws.OrderStatusEvent{
		OrderId: orderId,
		Status:  status,
	})
	return
}

func (ors *OrderService) CancelOrder(orderId int, sessionId string) (err error) {
	userId, _, _, e := ors.sr.GetUserSessionInfo(sessionId)
	if e != nil {
		err = models.ErrServerError
		return
	}
	paymentRef, e := ors.or.CancelOrder(orderId, userId)
	if e != nil {
		err = e
		return
	}
	// Refund failures are logged, not surfaced: the order is already
	// cancelled and support can replay the refund from the charge ref.
	if paymentRef != "" {
		if e := ors.gw.Refund(paymentRef); e != nil {
			log.Errorf("CancelOrder: refund %s: %v", paymentRef, e)
		}
	}
	ors.hub.Broadcast(ws.OrderStatusEvent{
		OrderId: orderId,
		Status:  "cancelled",
	})
	return
}
