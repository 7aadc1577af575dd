package services

import (
	"encoding/json"
	"testing"
	"time"

	"foodOrder/cart"
	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/payment"
	"foodOrder/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	userId int
	role   string
}

func (f *fakeSessionRepo) CreateSession(userId int, role string) (string, error) { return "s1", nil }
func (f *fakeSessionRepo) CheckSession(sessionId string) (bool, error)          { return true, nil }
func (f *fakeSessionRepo) DeleteSession(sessionId string) error                 { return nil }
func (f *fakeSessionRepo) RefreshSession(sessionId string, d time.Duration) error {
	return nil
}
func (f *fakeSessionRepo) GetUserSessionInfo(sessionId string) (int, string, bool, error) {
	return f.userId, f.role, true, nil
}

type fakeProductRepo struct {
	products map[int]models.Product_db
	options  map[int][]entities.ProductOption
}

func (f *fakeProductRepo) GetProductById(id int) (models.Product_db, bool, error) {
	p, ok := f.products[id]
	return p, ok, nil
}
func (f *fakeProductRepo) GetProductsByCategory(catId int) ([]entities.ProductPreview, error) {
	return nil, nil
}
func (f *fakeProductRepo) UpdateProductById(p models.Product) (models.Product_db, error) {
	return models.Product_db{}, nil
}
func (f *fakeProductRepo) CreateProduct(p models.Product) error { return nil }
func (f *fakeProductRepo) GetProductCategory(prodId int) (entities.Category, error) {
	return entities.Category{}, nil
}
func (f *fakeProductRepo) SetProductCategory(prodId int, cat entities.Category) error { return nil }
func (f *fakeProductRepo) RemoveProductCategory(prodId int) error                     { return nil }
func (f *fakeProductRepo) GetProductOptions(prodId int) ([]entities.ProductOption, error) {
	return f.options[prodId], nil
}
func (f *fakeProductRepo) SetProductOption(prodId int, opt entities.ProductOption) error { return nil }
func (f *fakeProductRepo) RemoveProductOption(prodId int, name string) (bool, error) {
	return false, nil
}

type fakeCartRepo struct {
	carts map[string]cart.Cart
}

func (f *fakeCartRepo) SetCart(id string, c cart.Cart) error {
	f.carts[id] = c
	return nil
}
func (f *fakeCartRepo) GetCart(id string) (cart.Cart, error) {
	c, ok := f.carts[id]
	if !ok {
		return cart.New(), nil
	}
	return c, nil
}
func (f *fakeCartRepo) DeleteCart(id string) error {
	delete(f.carts, id)
	return nil
}

type fakeOrderRepo struct {
	created    *models.Order_db
	items      []models.OrdersProducts_db
	paymentRef string
	statusSet  string
}

func (f *fakeOrderRepo) CreateOrder(order models.Order_db) (int, error) {
	f.created = &order
	return 42, nil
}
func (f *fakeOrderRepo) SetOrderItems(orderId int, prods []models.OrdersProducts_db) error {
	f.items = prods
	return nil
}
func (f *fakeOrderRepo) GetOrderItems(orderId int) ([]entities.ProductOrderFormat, error) {
	return nil, nil
}
func (f *fakeOrderRepo) GetOrderById(orderId int) (entities.Order, error) {
	order := entities.Order{OrderId: orderId}
	if f.created != nil {
		order.Status = f.created.Status
		order.Subtotal = f.created.Subtotal
		order.TotalPrice = f.created.TotalPrice
	}
	return order, nil
}
func (f *fakeOrderRepo) SearchOrders(data models.OrderSearchData) ([]entities.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) SetOrderStatus(orderId int, status string) error {
	f.statusSet = status
	return nil
}
func (f *fakeOrderRepo) CancelOrder(orderId int, userId int) (string, error) {
	return f.paymentRef, nil
}

type fakeCouponRepo struct {
	coupons map[string]models.Coupon_db
}

func (f *fakeCouponRepo) GetCouponByCode(code string) (models.Coupon_db, bool, error) {
	c, ok := f.coupons[code]
	return c, ok, nil
}
func (f *fakeCouponRepo) GetAllCoupons() ([]entities.Coupon, error) { return nil, nil }
func (f *fakeCouponRepo) CreateCoupon(c models.Coupon_db) (int, error) {
	return 0, nil
}
func (f *fakeCouponRepo) SetCouponActive(id int, active bool) error { return nil }

type fakeGateway struct {
	lastCharge *payment.ChargeRequest
	chargeErr  error
	refunded   []string
}

func (f *fakeGateway) Charge(req payment.ChargeRequest) (payment.ChargeResult, error) {
	f.lastCharge = &req
	if f.chargeErr != nil {
		return payment.ChargeResult{}, f.chargeErr
	}
	return payment.ChargeResult{ChargeRef: "ch_test", Status: "succeeded"}, nil
}
func (f *fakeGateway) Refund(chargeRef string) error {
	f.refunded = append(f.refunded, chargeRef)
	return nil
}

type orderFixture struct {
	svc     OrderService
	carts   *fakeCartRepo
	orders  *fakeOrderRepo
	gateway *fakeGateway
	hub     *ws.Hub
}

func newOrderFixture(t *testing.T, products map[int]models.Product_db, coupons map[string]models.Coupon_db) *orderFixture {
	t.Helper()
	carts := &fakeCartRepo{carts: map[string]cart.Cart{}}
	orders := &fakeOrderRepo{}
	gateway := &fakeGateway{}
	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	svc := NewOrderService(
		&fakeSessionRepo{userId: 7, role: "customer"},
		&fakeProductRepo{products: products},
		carts,
		orders,
		NewCouponService(&fakeCouponRepo{coupons: coupons}),
		gateway,
		hub,
	)
	return &orderFixture{svc: svc, carts: carts, orders: orders, gateway: gateway, hub: hub}
}

func TestCheckoutRepricesFromCatalog(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: true},
	}
	fx := newOrderFixture(t, products, nil)

	// the stored cart remembers an older price
	stale := cart.New().AddItem(entities.Product{Id: 1, Name: "margherita", Price: 9.00}, nil, "")
	stale = stale.UpdateQuantity(1, nil, 1)
	fx.carts.carts["c1"] = stale

	order, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	require.NoError(t, err)

	require.NotNil(t, fx.gateway.lastCharge)
	assert.Equal(t, 2*14.00+cart.DefaultDeliveryFee, fx.gateway.lastCharge.Amount)
	assert.Equal(t, "tok_visa", fx.gateway.lastCharge.PaymentToken)

	require.NotNil(t, fx.orders.created)
	assert.Equal(t, 28.00, fx.orders.created.Subtotal)
	assert.Equal(t, 33.00, fx.orders.created.TotalPrice)
	assert.Equal(t, "created", fx.orders.created.Status)
	assert.Equal(t, "ch_test", fx.orders.created.PaymentRef.String)
	assert.Equal(t, 42, order.OrderId)

	require.Len(t, fx.orders.items, 1)
	assert.Equal(t, 14.00, fx.orders.items[0].Price)
	assert.Equal(t, 2, fx.orders.items[0].Quantity)

	_, stored := fx.carts.carts["c1"]
	assert.False(t, stored, "cart should be cleared after checkout")
}

func TestCheckoutDeclinedKeepsCart(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: true},
	}
	fx := newOrderFixture(t, products, nil)
	fx.gateway.chargeErr = &payment.DeclinedError{Code: "card_declined", Reason: "insufficient funds"}
	fx.carts.carts["c1"] = cart.New().AddItem(entities.Product{Id: 1, Price: 14.00}, nil, "")

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	assert.ErrorIs(t, err, models.ErrPaymentDeclined)
	assert.Nil(t, fx.orders.created)
	_, stored := fx.carts.carts["c1"]
	assert.True(t, stored, "declined checkout must not clear the cart")
}

func TestCheckoutEmptyCart(t *testing.T) {
	fx := newOrderFixture(t, nil, nil)

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Nil(t, fx.gateway.lastCharge)
}

func TestCheckoutRevalidatesCoupon(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: true},
	}
	coupons := map[string]models.Coupon_db{
		"SAVE5": {Id: 1, Code: "SAVE5", Discount: 5.00, Expires: time.Now().Add(time.Hour), Active: false},
	}
	fx := newOrderFixture(t, products, coupons)

	crt := cart.New().AddItem(entities.Product{Id: 1, Price: 14.00}, nil, "")
	crt = crt.ApplyDiscount(5.00, "SAVE5")
	fx.carts.carts["c1"] = crt

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	assert.ErrorIs(t, err, models.ErrNotAllowed)
	assert.Nil(t, fx.gateway.lastCharge, "deactivated coupon must stop the charge")
}

func TestCheckoutAppliesActiveCoupon(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: true},
	}
	coupons := map[string]models.Coupon_db{
		"SAVE5": {Id: 1, Code: "SAVE5", Discount: 5.00, Expires: time.Now().Add(time.Hour), Active: true},
	}
	fx := newOrderFixture(t, products, coupons)

	crt := cart.New().AddItem(entities.Product{Id: 1, Price: 14.00}, nil, "")
	crt = crt.ApplyDiscount(5.00, "SAVE5")
	fx.carts.carts["c1"] = crt

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, 14.00+cart.DefaultDeliveryFee-5.00, fx.gateway.lastCharge.Amount)
	assert.Equal(t, "SAVE5", fx.orders.created.CouponCode.String)
	assert.Equal(t, 5.00, fx.orders.created.Discount)
}

func TestCheckoutUnavailableProduct(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: false},
	}
	fx := newOrderFixture(t, products, nil)
	fx.carts.carts["c1"] = cart.New().AddItem(entities.Product{Id: 1, Price: 14.00}, nil, "")

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	assert.ErrorIs(t, err, models.ErrNotAllowed)
	assert.Nil(t, fx.gateway.lastCharge)
}

func TestCheckoutStoresOptionsJson(t *testing.T) {
	products := map[int]models.Product_db{
		1: {Id: 1, Name: "margherita", Price: 14.00, Available: true},
	}
	fx := newOrderFixture(t, products, nil)
	opts := map[string]string{"size": "large", "crust": "thin"}
	fx.carts.carts["c1"] = cart.New().AddItem(entities.Product{Id: 1, Price: 14.00}, opts, "")

	_, err := fx.svc.Checkout("s1", "c1", "tok_visa")
	require.NoError(t, err)
	require.Len(t, fx.orders.items, 1)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(fx.orders.items[0].Options), &decoded))
	assert.Equal(t, opts, decoded)
}

func TestSetOrderStatusBroadcasts(t *testing.T) {
	fx := newOrderFixture(t, nil, nil)
	sess := newFrameSink()
	fx.hub.Register(sess)
	sess.next(t) // welcome frame

	require.NoError(t, fx.svc.SetOrderStatus(42, "preparing"))
	assert.Equal(t, "preparing", fx.orders.statusSet)

	frame, err := ws.Decode(sess.next(t))
	require.NoError(t, err)
	status, ok := frame.(ws.OrderStatusFrame)
	require.True(t, ok, "expected an order status frame, got %T", frame)
	assert.Equal(t, 42, status.OrderId)
	assert.Equal(t, "preparing", status.Status)
}

func TestCancelOrderRefunds(t *testing.T) {
	fx := newOrderFixture(t, nil, nil)
	fx.orders.paymentRef = "ch_old"

	require.NoError(t, fx.svc.CancelOrder(42, "s1"))
	assert.Equal(t, []string{"ch_old"}, fx.gateway.refunded)
}

// frameSink is a hub session backed by a channel.
type frameSink struct {
	frames chan []byte
}

func newFrameSink() *frameSink {
	return &frameSink{frames: make(chan []byte, 16)}
}

func (s *frameSink) Send(data []byte) error {
	s.frames <- data
	return nil
}

func (s *frameSink) Close(code int) error { return nil }

func (s *frameSink) next(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-s.frames:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}
