package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrBadRequest = errors.New("bad request")
var ErrUnautorized = errors.New("unautorized")
var ErrServerError = errors.New("server error")
var ErrNotFoundError = errors.New("not found")
var ErrNotAllowed = errors.New("not acceptable")
var ErrPaymentDeclined = errors.New("payment declined")

type Credentials struct {
	Password string `json:"password" db:"Password"`
	Username string `json:"username" db:"Nickname"`
	Role     string `json:"role" db:"Role"`
}

type PasswordData struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type Product struct {
	Id          int     `json:"id" db:"Id"`
	Name        string  `json:"name" db:"Name"`
	Price       float64 `json:"price" db:"Price"`
	Description string  `json:"description" db:"Description"`
	Available   *bool   `json:"available,omitempty"`
}

type Category_db struct {
	Id       int
	Name     string
	ParentId sql.NullInt64
}

type UserData struct {
	Id       int
	Nickname string `json:"username" db:"Nickname"`
	Role     string `json:"role" db:"Role"`
}

type OrderSearchData struct {
	DateStart *time.Time
	DateEnd   *time.Time
	UserId    *int
	Status    *string
	ProdId    *int
}

type CategoryRequest struct {
	Id       int
	Name     string
	ParentId NullInt `json:"parent_id,omitempty"`
}

type NullInt struct {
	Valid bool
	Value int
}

func (ni *NullInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ni.Valid = true
		ni.Value = 0
		return nil
	}
	ni.Valid = true
	return json.Unmarshal(data, &ni.Value)
}

type Product_db struct {
	Id          int            `json:"id" db:"Id"`
	Name        string         `json:"name" db:"Name"`
	Price       float64        `json:"price" db:"Price"`
	Description sql.NullString `json:"description" db:"Description"`
	Available   bool           `json:"available" db:"Available"`
}

type ProductsCategories_db struct {
	ProductId  int
	CategoryId int
}

type ProductOption_db struct {
	Id        int
	ProductId int
	Name      string
	Values    string // comma separated
}

type Order_db struct {
	Id          int
	UserId      int
	Date        time.Time
	Subtotal    float64
	DeliveryFee float64
	Discount    float64
	CouponCode  sql.NullString
	TotalPrice  float64
	Status      string
	PaymentRef  sql.NullString
}

type OrdersProducts_db struct {
	Id        int
	OrderId   int
	ProductId int
	Quantity  int
	Price     float64
	Options   string // json object, canonical key order
}

type Coupon_db struct {
	Id       int
	Code     string
	Discount float64
	Expires  time.Time
	Active   bool
}

type User_db struct {
	Id       int
	Nickname string `json:"username" db:"Nickname"`
	Password string `json:"password" db:"Password"`
	Role     string `json:"role" db:"Role"`
}

// request payloads for cart endpoints

type CartAddRequest struct {
	ProductId   int               `json:"product_id"`
	Options     map[string]string `json:"options,omitempty"`
	Observation string            `json:"observation,omitempty"`
}

type CartUpdateRequest struct {
	ProductId int               `json:"product_id"`
	Options   map[string]string `json:"options,omitempty"`
	Delta     int               `json:"delta"`
}

type CouponRequest struct {
	Code string `json:"code"`
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

type CheckoutRequest struct {
	PaymentToken string `json:"payment_token"`
}
