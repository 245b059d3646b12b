package domain

import "github.com/shopspring/decimal"

type WishlistItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref"`
}

// Wishlist holds the saved-item set. Membership is boolean; there is no
// quantity and no duplicate product_id.
type Wishlist struct {
	Items     []WishlistItem `json:"items"`
	ItemCount int            `json:"item_count"`
}

type WishlistSnapshot struct {
	Items     []WishlistItem `json:"items"`
	ItemCount int            `json:"item_count"`
}

func NewWishlist() *Wishlist {
	return &Wishlist{Items: []WishlistItem{}}
}

// Add is idempotent: adding an existing member is a no-op. Toggling is the
// caller's responsibility.
func (w *Wishlist) Add(item WishlistItem) {
	if w.Contains(item.ProductID) {
		return
	}
	w.Items = append(w.Items, item)
	w.ItemCount = len(w.Items)
}

func (w *Wishlist) Remove(productID string) {
	for i, item := range w.Items {
		if item.ProductID == productID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			w.ItemCount = len(w.Items)
			return
		}
	}
}

func (w *Wishlist) Contains(productID string) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (w *Wishlist) Clear() {
	w.Items = []WishlistItem{}
	w.ItemCount = 0
}

func (w *Wishlist) Replace(snap WishlistSnapshot) {
	w.Items = make([]WishlistItem, len(snap.Items))
	copy(w.Items, snap.Items)
	w.ItemCount = len(w.Items)
}

func (w *Wishlist) Snapshot() WishlistSnapshot {
	items := make([]WishlistItem, len(w.Items))
	copy(items, w.Items)
	return WishlistSnapshot{Items: items, ItemCount: w.ItemCount}
}
