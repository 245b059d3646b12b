package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_storefront/internal/discount"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
)

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddItemRequestDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
	Quantity  int     `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

type CartItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
	Quantity  int     `json:"quantity"`
}

type CartResponseDTO struct {
	Items       []CartItemDTO `json:"items"`
	ItemCount   int           `json:"item_count"`
	Subtotal    float64       `json:"subtotal"`
	ShippingFee float64       `json:"shipping_fee"`
	Total       float64       `json:"total"`
}

type CouponResponseDTO struct {
	Code        string  `json:"code"`
	Valid       bool    `json:"valid"`
	Percentage  float64 `json:"percentage"`
	AmountOff   float64 `json:"amount_off"`
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}

func toCartResponse(snap domain.CartSnapshot) CartResponseDTO {
	items := make([]CartItemDTO, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, CartItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			ImageRef:  item.ImageRef,
			Quantity:  item.Quantity,
		})
	}
	shipping := discount.ShippingFee(snap.Total)
	return CartResponseDTO{
		Items:       items,
		ItemCount:   snap.ItemCount,
		Subtotal:    snap.Total.InexactFloat64(),
		ShippingFee: shipping.InexactFloat64(),
		Total:       discount.Total(snap.Total, decimal.Zero, shipping).InexactFloat64(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	snap := h.cart.AddItem(domain.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: decimal.NewFromFloat(req.UnitPrice),
		ImageRef:  req.ImageRef,
	}, req.Quantity)

	respondJSON(w, http.StatusCreated, toCartResponse(snap))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(h.cart.UpdateQuantity(productID, req.Quantity)))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(h.cart.RemoveItem(productID)))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Clear()))
}

// ApplyCoupon evaluates a code against the cart's current subtotal. The
// result is computed fresh on every call; it is never stored apart from
// the subtotal it was derived from.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	snap := h.cart.Snapshot()
	result := discount.Evaluate(req.Code, snap.Total)
	shipping := discount.ShippingFee(snap.Total)

	respondJSON(w, http.StatusOK, CouponResponseDTO{
		Code:        result.Code,
		Valid:       result.Valid,
		Percentage:  result.Percentage.InexactFloat64(),
		AmountOff:   result.AmountOff.InexactFloat64(),
		Subtotal:    snap.Total.InexactFloat64(),
		ShippingFee: shipping.InexactFloat64(),
		Total:       discount.Total(snap.Total, result.AmountOff, shipping).InexactFloat64(),
	})
}
