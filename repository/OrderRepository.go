package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"foodOrder/entities"
	"foodOrder/models"
)

// statusFlow lists the allowed transitions for an order.
var statusFlow = map[string][]string{
	"created":          {"confirmed", "cancelled"},
	"confirmed":        {"preparing", "cancelled"},
	"preparing":        {"out_for_delivery"},
	"out_for_delivery": {"delivered"},
}

func transitionAllowed(from, to string) bool {
	for _, s := range statusFlow[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderRepository interface {
	CreateOrder(order models.Order_db) (orderId int, err error)
	SetOrderItems(orderId int, prods []models.OrdersProducts_db) (err error)
	GetOrderItems(orderId int) (prods []entities.ProductOrderFormat, err error)
	GetOrderById(orderId int) (order entities.Order, err error)
	SearchOrders(data models.OrderSearchData) (orders []entities.Order, err error)
	SetOrderStatus(orderId int, status string) (err error)
	CancelOrder(orderId int, userId int) (paymentRef string, err error)
}

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepository(conn *sql.DB) (OrderRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &OrderRepo{
		db: conn,
	}, nil
}

func (o *OrderRepo) CreateOrder(order models.Order_db) (orderId int, err error) {
	var oId int64
	e := o.db.QueryRow(
		"INSERT INTO Orders (UserId, Date, Subtotal, DeliveryFee, Discount, CouponCode, TotalPrice, Status, PaymentRef) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING Id",
		order.UserId, order.Date, order.Subtotal, order.DeliveryFee, order.Discount,
		order.CouponCode, order.TotalPrice, order.Status, order.PaymentRef).Scan(&oId)
	if e != nil {
		log.Errorf("CreateOrder: %v", e)
		err = models.ErrServerError
		return
	}
	orderId = int(oId)
	return
}

func (o *OrderRepo) SetOrderItems(orderId int, prods []models.OrdersProducts_db) (err error) {
	for _, v := range prods {
		_, err = o.db.Exec("INSERT INTO OrdersProducts (OrderId, ProductId, Quantity, Price, Options) VALUES ($1, $2, $3, $4, $5)",
			orderId, v.ProductId, v.Quantity, v.Price, v.Options)
		if err != nil {
			log.Errorf("SetOrderItems: %v", err)
			err = models.ErrServerError
			return
		}
	}
	return
}

func (o *OrderRepo) GetOrderItems(orderId int) (prods []entities.ProductOrderFormat, err error) {
	rows, e := o.db.Query("SELECT OrdersProducts.ProductId, OrdersProducts.Quantity, OrdersProducts.Price, OrdersProducts.Options, Products.Name FROM OrdersProducts JOIN Products ON OrdersProducts.ProductId=Products.Id WHERE OrdersProducts.OrderId=$1", orderId)
	if e != nil {
		log.Errorf("GetOrderItems[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	for rows.Next() {
		prod := entities.ProductOrderFormat{}
		var opts string
		err = rows.Scan(&prod.Id, &prod.Quantity, &prod.Price, &opts, &prod.Name)
		if err != nil {
			log.Errorf("GetOrderItems[2]: %v", err)
			err = models.ErrServerError
			return
		}
		if opts != "" {
			if e := json.Unmarshal([]byte(opts), &prod.Options); e != nil {
				log.Errorf("GetOrderItems: options decode: %v", e)
			}
		}
		prod.TotalPrice = prod.Price * float64(prod.Quantity)
		prods = append(prods, prod)
	}
	if e := rows.Err(); e != nil {
		log.Errorf("GetOrderItems[3]: %v", e)
		err = models.ErrServerError
	}
	return
}

func (o *OrderRepo) GetOrderById(orderId int) (order entities.Order, err error) {
	row := o.db.QueryRow("SELECT Id, UserId, Date, Subtotal, DeliveryFee, Discount, CouponCode, TotalPrice, Status FROM Orders WHERE Id=$1", orderId)
	var or models.Order_db
	err = row.Scan(&or.Id, &or.UserId, &or.Date, &or.Subtotal, &or.DeliveryFee, &or.Discount, &or.CouponCode, &or.TotalPrice, &or.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			err = models.ErrNotFoundError
		} else {
			log.Errorf("GetOrderById[1]: %v", err)
			err = models.ErrServerError
		}
		return
	}

	var usr models.UserData
	usr.Id = or.UserId
	row = o.db.QueryRow("SELECT Nickname, Role FROM Users WHERE Id=$1", or.UserId)
	err = row.Scan(&usr.Nickname, &usr.Role)
	if err != nil {
		log.Errorf("GetOrderById[2]: %v", err)
		err = models.ErrServerError
		return
	}

	prods, e := o.GetOrderItems(orderId)
	if e != nil {
		err = e
		return
	}

	order = entities.Order{
		OrderId:     orderId,
		Date:        or.Date,
		Status:      or.Status,
		Subtotal:    or.Subtotal,
		DeliveryFee: or.DeliveryFee,
		Discount:    or.Discount,
		CouponCode:  or.CouponCode.String,
		TotalPrice:  or.TotalPrice,
		UserData:    usr,
		Products:    prods,
	}
	return
}

func (o *OrderRepo) SetOrderStatus(orderId int, status string) (err error) {
	row := o.db.QueryRow("SELECT Status FROM Orders WHERE Id=$1", orderId)
	var current string
	err = row.Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			err = models.ErrNotFoundError
		} else {
			log.Errorf("SetOrderStatus[1]: %v", err)
			err = models.ErrServerError
		}
		return
	}
	if !transitionAllowed(current, status) {
		log.Errorf("SetOrderStatus: transition %v -> %v is not allowed", current, status)
		err = models.ErrNotAllowed
		return
	}

	_, err = o.db.Exec("UPDATE Orders SET Status=$1 WHERE Id=$2", status, orderId)
	if err != nil {
		log.Errorf("SetOrderStatus[2]: %v", err)
		err = models.ErrServerError
	}
	return
}

func (o *OrderRepo) SearchOrders(data models.OrderSearchData) (orders []entities.Order, err error) {
	var query string
	var queryParams []any
	var count int

	query = "SELECT Orders.Id, Orders.UserId, Orders.Date, Orders.Subtotal, Orders.DeliveryFee, Orders.Discount, Orders.CouponCode, Orders.TotalPrice, Orders.Status FROM Orders WHERE "

	if data.ProdId != nil {
		// the join yields one row per matching line, DISTINCT collapses
		// orders holding the product on several lines
		query = "SELECT DISTINCT" + query[len("SELECT"):len(query)-6]
		query = query + "JOIN OrdersProducts ON Orders.Id = OrdersProducts.OrderId WHERE "
	}

	if data.DateStart != nil && data.DateEnd != nil {
		query = query + "Date BETWEEN $1 AND $2 AND "
		count = count + 2
		queryParams = append(queryParams, data.DateStart, data.DateEnd)
	}

	if data.UserId != nil {
		count = count + 1
		query = query + "UserId=$" + strconv.Itoa(count) + " AND "
		queryParams = append(queryParams, data.UserId)
	}

	if data.Status != nil {
		count = count + 1
		query = query + "Status=$" + strconv.Itoa(count) + " AND "
		queryParams = append(queryParams, data.Status)
	}

	if data.ProdId != nil {
		count = count + 1
		query = query + "OrdersProducts.ProductId=$" + strconv.Itoa(count) + " AND "
		queryParams = append(queryParams, data.ProdId)
	}
	if count > 0 {
		query = query[0 : len(query)-4] //AND
	} else {
		query = query[0 : len(query)-6] //WHERE
	}
	query = query + "ORDER BY Orders.Id"

	rows, e := o.db.Query(query, queryParams...)
	if e != nil {
		log.Errorf("SearchOrders[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	for rows.Next() {
		ord := entities.Order{}
		var couponCode sql.NullString
		err = rows.Scan(&ord.OrderId, &ord.UserData.Id, &ord.Date, &ord.Subtotal, &ord.DeliveryFee, &ord.Discount, &couponCode, &ord.TotalPrice, &ord.Status)
		if err != nil {
			log.Errorf("SearchOrders[2]: %v", err)
			err = models.ErrServerError
			return
		}
		ord.CouponCode = couponCode.String

		rowUser := o.db.QueryRow("SELECT Nickname, Role FROM Users WHERE Id = $1", ord.UserData.Id)
		e2 := rowUser.Scan(&ord.UserData.Nickname, &ord.UserData.Role)
		if e2 != nil {
			log.Errorf("SearchOrders[3]: %v", e2)
			err = models.ErrServerError
			return
		}

		ord.Products, e2 = o.GetOrderItems(ord.OrderId)
		if e2 != nil {
			err = e2
			return
		}
		orders = append(orders, ord)
	}
	if e := rows.Err(); e != nil {
		log.Errorf("SearchOrders[4]: %v", e)
		err = models.ErrServerError
		return
	}

	if len(orders) == 0 {
		err = models.ErrNotFoundError
	}
	return
}

// CancelOrder flips a recent order to cancelled and reports its payment
// reference so the caller can refund the charge.
func (o *OrderRepo) CancelOrder(orderId int, userId int) (paymentRef string, err error) {
	row := o.db.QueryRow("SELECT Date, Status, PaymentRef FROM Orders WHERE Id=$1 AND UserId=$2", orderId, userId)
	var or models.Order_db
	err = row.Scan(&or.Date, &or.Status, &or.PaymentRef)
	if err != nil {
		if err == sql.ErrNoRows {
			err = models.ErrNotFoundError
		} else {
			log.Errorf("CancelOrder[1]: %v", err)
			err = models.ErrServerError
		}
		return
	}
	if !transitionAllowed(or.Status, "cancelled") {
		log.Errorf("CancelOrder: order %v in status %v cannot be cancelled", orderId, or.Status)
		err = models.ErrNotAllowed
		return
	}
	if time.Since(or.Date.UTC()) > 10*time.Minute {
		log.Errorf("CancelOrder: cancellation window for order %v has passed", orderId)
		err = models.ErrNotAllowed
		return
	}

	_, err = o.db.Exec("UPDATE Orders SET Status=$1 WHERE Id=$2", "cancelled", orderId)
	if err != nil {
		log.Errorf("CancelOrder[2]: %v", err)
		err = models.ErrServerError
		return
	}
	paymentRef = or.PaymentRef.String
	return
}
