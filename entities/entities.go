package entities

import (
	"time"

	"foodOrder/models"
)

type Product struct {
	Id          int
	Name        string
	Description string
	Price       float64
	Available   bool
	Category    Category
	Options     []ProductOption
}

type ProductPreview struct {
	Id        int
	Name      string
	Price     float64
	Available bool
}

type ProductOrderFormat struct {
	Id         int
	Name       string
	Quantity   int
	Price      float64
	Options    map[string]string
	TotalPrice float64
}

// ProductOption declares one configurable choice for a product,
// e.g. Name="size", Values=["small","large"].
type ProductOption struct {
	Id     int      `json:"option_id"`
	Name   string   `json:"option_name"`
	Values []string `json:"option_values"`
}

type Category struct {
	Id   int    `json:"category_id"`
	Name string `json:"category_name"`
}

type CategoryTree struct {
	ID       int            `json:"-"`
	ParentID int            `json:"-"`
	Name     string         `json:"name"`
	Children []CategoryTree `json:"children,omitempty"`
}

type Coupon struct {
	Id       int       `json:"coupon_id"`
	Code     string    `json:"code"`
	Discount float64   `json:"discount"`
	Expires  time.Time `json:"expires"`
	Active   bool      `json:"active"`
}

type Order struct {
	OrderId     int
	Date        time.Time
	Status      string
	Subtotal    float64
	DeliveryFee float64
	Discount    float64
	CouponCode  string
	TotalPrice  float64
	UserData    models.UserData
	Products    []ProductOrderFormat
}
