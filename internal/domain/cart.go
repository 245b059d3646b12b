package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref"`
	Quantity  int             `json:"quantity"`
}

// Cart is the in-memory authoritative cart for the current session.
// Total and ItemCount are derived and recomputed on every mutation.
type Cart struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// CartSnapshot is the full cart state at a point in time, used for
// persistence and wholesale replacement.
type CartSnapshot struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Add merges qty of item into the cart. An existing product_id has its
// quantity incremented, never a second entry appended. qty < 1 is a no-op.
func (c *Cart) Add(item CartItem, qty int) {
	if qty < 1 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += qty
			c.recompute()
			return
		}
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
	c.recompute()
}

// Remove drops the item with the given product_id. Absent id is a no-op.
func (c *Cart) Remove(productID string) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recompute()
			return
		}
	}
}

// UpdateQuantity sets the quantity for product_id. qty < 1 and absent id
// are both no-ops.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	if qty < 1 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.recompute()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.recompute()
}

// Replace swaps in a full snapshot. Derived fields are recomputed rather
// than trusted, so a stale or hand-built snapshot cannot tear them out of
// sync with the item list.
func (c *Cart) Replace(snap CartSnapshot) {
	c.Items = make([]CartItem, len(snap.Items))
	copy(c.Items, snap.Items)
	c.recompute()
}

// Snapshot returns a value copy of the full cart state.
func (c *Cart) Snapshot() CartSnapshot {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return CartSnapshot{Items: items, Total: c.Total, ItemCount: c.ItemCount}
}

func (c *Cart) recompute() {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	c.Total = total
	c.ItemCount = count
}
