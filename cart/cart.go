package cart

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"foodOrder/entities"
)

// DefaultDeliveryFee is applied to every new cart; checkout may override it
// per delivery zone later.
const DefaultDeliveryFee = 5.00

type Item struct {
	ProductId   int               `json:"product_id"`
	Name        string            `json:"name"`
	UnitPrice   float64           `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	Options     map[string]string `json:"options,omitempty"`
	Observation string            `json:"observation,omitempty"`
	LineTotal   float64           `json:"line_total"`
}

// Cart is a value: every operation returns a new Cart and leaves the
// receiver untouched, so a stored copy can never be half-updated.
type Cart struct {
	Items       []Item  `json:"items"`
	DeliveryFee float64 `json:"delivery_fee"`
	Discount    float64 `json:"discount"`
	CouponCode  string  `json:"coupon_code,omitempty"`
	Subtotal    float64 `json:"subtotal"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"item_count"`
}

func New() Cart {
	c := Cart{
		Items:       []Item{},
		DeliveryFee: DefaultDeliveryFee,
	}
	return c.recompute()
}

// Key identifies a line: same product plus structurally equal option
// selection. Options are canonicalized (sorted by name) so key order in the
// request payload does not split semantically equal selections into
// separate lines. Names and values are percent-escaped so a delimiter
// character inside a value cannot collide with a different selection.
func Key(productId int, options map[string]string) string {
	if len(options) == 0 {
		return strconv.Itoa(productId)
	}
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(options[name]))
	}
	return strconv.Itoa(productId) + "|" + strings.Join(parts, ";")
}

func (it Item) key() string {
	return Key(it.ProductId, it.Options)
}

// AddItem merges into an existing line (quantity +1) when the identity key
// matches, otherwise appends a new line with quantity 1.
func (c Cart) AddItem(p entities.Product, options map[string]string, observation string) Cart {
	key := Key(p.Id, options)
	items := c.copyItems()

	merged := false
	for i := range items {
		if items[i].key() == key {
			items[i].Quantity++
			items[i].LineTotal = float64(items[i].Quantity) * items[i].UnitPrice
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, Item{
			ProductId:   p.Id,
			Name:        p.Name,
			UnitPrice:   p.Price,
			Quantity:    1,
			Options:     copyOptions(options),
			Observation: observation,
			LineTotal:   p.Price,
		})
	}
	c.Items = items
	return c.recompute()
}

// UpdateQuantity adds delta to the matching line's quantity. A resulting
// quantity of zero or less deletes the line. An unknown key is a no-op, so
// stale item references cannot corrupt the cart.
func (c Cart) UpdateQuantity(productId int, options map[string]string, delta int) Cart {
	key := Key(productId, options)
	items := c.copyItems()

	for i := range items {
		if items[i].key() != key {
			continue
		}
		items[i].Quantity += delta
		if items[i].Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].LineTotal = float64(items[i].Quantity) * items[i].UnitPrice
		}
		c.Items = items
		return c.recompute()
	}
	return c
}

// RemoveItem deletes the matching line. Unknown key is a no-op.
func (c Cart) RemoveItem(productId int, options map[string]string) Cart {
	key := Key(productId, options)
	items := c.copyItems()

	for i := range items {
		if items[i].key() == key {
			items = append(items[:i], items[i+1:]...)
			c.Items = items
			return c.recompute()
		}
	}
	return c
}

// ApplyDiscount sets the discount amount and coupon code. Bounds are not
// validated here; coupon eligibility is the coupon service's call.
func (c Cart) ApplyDiscount(amount float64, code string) Cart {
	c.Items = c.copyItems()
	c.Discount = amount
	c.CouponCode = code
	return c.recompute()
}

// Clear resets to the empty default cart.
func (c Cart) Clear() Cart {
	return New()
}

// recompute rebuilds every aggregate from scratch over all lines rather
// than adjusting incrementally, so totals stay consistent no matter what
// sequence of operations produced the line list.
func (c Cart) recompute() Cart {
	var subtotal float64
	var count int
	for _, it := range c.Items {
		subtotal += it.LineTotal
		count += it.Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
	c.Total = subtotal + c.DeliveryFee - c.Discount
	return c
}

func (c Cart) copyItems() []Item {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return items
}

func copyOptions(options map[string]string) map[string]string {
	if options == nil {
		return nil
	}
	cp := make(map[string]string, len(options))
	for k, v := range options {
		cp[k] = v
	}
	return cp
}
