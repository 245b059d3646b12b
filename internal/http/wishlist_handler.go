package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
)

type WishlistHandler struct {
	wishlist *service.WishlistService
}

func NewWishlistHandler(wishlist *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

type SaveItemRequestDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
}

type WishlistItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
}

type WishlistResponseDTO struct {
	Items     []WishlistItemDTO `json:"items"`
	ItemCount int               `json:"item_count"`
}

type MembershipResponseDTO struct {
	ProductID string `json:"product_id"`
	Member    bool   `json:"member"`
}

func toWishlistResponse(snap domain.WishlistSnapshot) WishlistResponseDTO {
	items := make([]WishlistItemDTO, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, WishlistItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			ImageRef:  item.ImageRef,
		})
	}
	return WishlistResponseDTO{Items: items, ItemCount: snap.ItemCount}
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toWishlistResponse(h.wishlist.Snapshot()))
}

func (h *WishlistHandler) SaveItem(w http.ResponseWriter, r *http.Request) {
	var req SaveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	snap := h.wishlist.AddItem(domain.WishlistItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: decimal.NewFromFloat(req.UnitPrice),
		ImageRef:  req.ImageRef,
	})
	respondJSON(w, http.StatusCreated, toWishlistResponse(snap))
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	respondJSON(w, http.StatusOK, toWishlistResponse(h.wishlist.RemoveItem(productID)))
}

func (h *WishlistHandler) CheckMembership(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	respondJSON(w, http.StatusOK, MembershipResponseDTO{
		ProductID: productID,
		Member:    h.wishlist.Contains(productID),
	})
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toWishlistResponse(h.wishlist.Clear()))
}
