package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist_AddIsIdempotent(t *testing.T) {
	wishlist := NewWishlist()
	item := WishlistItem{ProductID: "p1", Name: "Lamp", UnitPrice: price("29.99")}

	wishlist.Add(item)
	wishlist.Add(item)

	require.Len(t, wishlist.Items, 1)
	assert.Equal(t, 1, wishlist.ItemCount)
}

func TestWishlist_Contains(t *testing.T) {
	wishlist := NewWishlist()
	wishlist.Add(WishlistItem{ProductID: "p1"})

	assert.True(t, wishlist.Contains("p1"))
	assert.False(t, wishlist.Contains("p2"))
}

func TestWishlist_RemoveAbsentIsNoOp(t *testing.T) {
	wishlist := NewWishlist()
	wishlist.Add(WishlistItem{ProductID: "p1"})

	wishlist.Remove("missing")
	require.Len(t, wishlist.Items, 1)
	assert.Equal(t, 1, wishlist.ItemCount)
}

func TestWishlist_Remove(t *testing.T) {
	wishlist := NewWishlist()
	wishlist.Add(WishlistItem{ProductID: "p1"})
	wishlist.Add(WishlistItem{ProductID: "p2"})

	wishlist.Remove("p1")
	require.Len(t, wishlist.Items, 1)
	assert.Equal(t, "p2", wishlist.Items[0].ProductID)
	assert.Equal(t, 1, wishlist.ItemCount)
}

func TestWishlist_Clear(t *testing.T) {
	wishlist := NewWishlist()
	wishlist.Add(WishlistItem{ProductID: "p1"})
	wishlist.Add(WishlistItem{ProductID: "p2"})

	wishlist.Clear()
	assert.Empty(t, wishlist.Items)
	assert.Equal(t, 0, wishlist.ItemCount)
}

func TestWishlist_ReplaceRecountsItems(t *testing.T) {
	wishlist := NewWishlist()
	wishlist.Replace(WishlistSnapshot{
		Items:     []WishlistItem{{ProductID: "p1"}, {ProductID: "p2"}},
		ItemCount: 99,
	})

	assert.Equal(t, 2, wishlist.ItemCount)
	assert.True(t, wishlist.Contains("p1"))
	assert.True(t, wishlist.Contains("p2"))
}
