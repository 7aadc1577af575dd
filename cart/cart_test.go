package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodOrder/entities"
)

func burger() entities.Product {
	return entities.Product{Id: 1, Name: "smash burger", Price: 12.50}
}

func soda() entities.Product {
	return entities.Product{Id: 2, Name: "soda", Price: 3.00}
}

func TestAddItemEmptyCart(t *testing.T) {
	c := New().AddItem(burger(), nil, "")

	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, 12.50, c.Items[0].LineTotal)
	assert.Equal(t, 12.50, c.Subtotal)
	assert.Equal(t, 1, c.ItemCount)
	assert.Equal(t, 12.50+DefaultDeliveryFee, c.Total)
}

func TestAddItemMergesEqualLines(t *testing.T) {
	opts := map[string]string{"size": "large", "cheese": "extra"}
	c := New().
		AddItem(burger(), opts, "").
		AddItem(burger(), map[string]string{"cheese": "extra", "size": "large"}, "")

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 25.00, c.Items[0].LineTotal)
	assert.Equal(t, 2, c.ItemCount)
}

func TestAddItemDistinctOptionsSeparateLines(t *testing.T) {
	c := New().
		AddItem(burger(), map[string]string{"size": "large"}, "").
		AddItem(burger(), map[string]string{"size": "small"}, "").
		AddItem(burger(), nil, "")

	assert.Len(t, c.Items, 3)
	assert.Equal(t, 3, c.ItemCount)
}

func TestUpdateQuantityDelta(t *testing.T) {
	c := New().AddItem(soda(), nil, "")
	c = c.UpdateQuantity(2, nil, 3)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, 12.00, c.Subtotal)
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	c := New().
		AddItem(burger(), nil, "").
		AddItem(soda(), nil, "")
	c = c.UpdateQuantity(2, nil, 2) // soda x3
	before := c.ItemCount

	c = c.UpdateQuantity(2, nil, -3)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].ProductId)
	assert.Equal(t, before-3, c.ItemCount)
	assert.Equal(t, 12.50, c.Subtotal)
}

func TestUpdateQuantityUnknownLineNoop(t *testing.T) {
	c := New().AddItem(burger(), nil, "")
	got := c.UpdateQuantity(99, nil, 1)

	assert.Equal(t, c, got)
}

func TestRemoveItem(t *testing.T) {
	opts := map[string]string{"size": "large"}
	c := New().
		AddItem(burger(), opts, "").
		AddItem(burger(), nil, "")

	c = c.RemoveItem(1, opts)

	require.Len(t, c.Items, 1)
	assert.Nil(t, c.Items[0].Options)

	c = c.RemoveItem(42, nil) // unknown key, no-op
	assert.Len(t, c.Items, 1)
}

func TestApplyDiscount(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductId: 1, UnitPrice: 25.00, Quantity: 2, LineTotal: 50.00},
	}, DeliveryFee: 5.00}.recompute()

	c = c.ApplyDiscount(10, "WELCOME10")

	assert.Equal(t, 50.00, c.Subtotal)
	assert.Equal(t, 45.00, c.Total)
	assert.Equal(t, "WELCOME10", c.CouponCode)
}

func TestClearResetsToDefault(t *testing.T) {
	c := New().
		AddItem(burger(), nil, "no onions").
		ApplyDiscount(3, "X").
		Clear()

	assert.Empty(t, c.Items)
	assert.Equal(t, DefaultDeliveryFee, c.DeliveryFee)
	assert.Zero(t, c.Discount)
	assert.Empty(t, c.CouponCode)
	assert.Zero(t, c.ItemCount)
}

// aggregates must hold after any sequence of operations, recomputed from
// the resulting cart alone
func TestAggregatesConsistentAcrossSequences(t *testing.T) {
	c := New().
		AddItem(burger(), map[string]string{"size": "large"}, "").
		AddItem(soda(), nil, "").
		AddItem(burger(), map[string]string{"size": "large"}, "").
		UpdateQuantity(2, nil, 4).
		RemoveItem(1, map[string]string{"size": "large"}).
		AddItem(burger(), nil, "extra sauce").
		UpdateQuantity(1, nil, 1).
		ApplyDiscount(2.50, "SAVE")

	var subtotal float64
	var count int
	for _, it := range c.Items {
		assert.Equal(t, float64(it.Quantity)*it.UnitPrice, it.LineTotal)
		subtotal += it.LineTotal
		count += it.Quantity
	}
	assert.Equal(t, subtotal, c.Subtotal)
	assert.Equal(t, count, c.ItemCount)
	assert.Equal(t, subtotal+c.DeliveryFee-c.Discount, c.Total)
}

func TestMutationsDoNotAliasPriorValue(t *testing.T) {
	base := New().AddItem(burger(), nil, "")
	next := base.AddItem(burger(), nil, "")

	assert.Equal(t, 1, base.Items[0].Quantity)
	assert.Equal(t, 2, next.Items[0].Quantity)
}

func TestKeyCanonicalOrder(t *testing.T) {
	a := Key(7, map[string]string{"b": "2", "a": "1"})
	b := Key(7, map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Key(7, map[string]string{"a": "1"}))
	assert.NotEqual(t, a, Key(8, map[string]string{"b": "2", "a": "1"}))
}

func TestKeyDelimitersInValues(t *testing.T) {
	// a delimiter inside a value must not collapse into another selection
	assert.NotEqual(t,
		Key(7, map[string]string{"a": "1;b=2"}),
		Key(7, map[string]string{"a": "1", "b": "2"}))
	assert.NotEqual(t,
		Key(7, map[string]string{"a|x": "1"}),
		Key(7, map[string]string{"a": "x=1"}))
	// escaping keeps equal selections equal
	assert.Equal(t,
		Key(7, map[string]string{"a": "1;b=2"}),
		Key(7, map[string]string{"a": "1;b=2"}))
}

func TestCraftedOptionsCannotTouchOtherLine(t *testing.T) {
	c := New().
		AddItem(burger(), map[string]string{"a": "1", "b": "2"}, "").
		AddItem(soda(), nil, "")

	hit := c.UpdateQuantity(1, map[string]string{"a": "1;b=2"}, -1)
	assert.Equal(t, c, hit, "crafted selection must be a no-op, not match another line")

	hit = c.RemoveItem(1, map[string]string{"a": "1;b=2"})
	assert.Equal(t, c, hit)
}
