package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
)

type OrdersHandler struct {
	orders  *service.OrdersService
	timeout time.Duration
}

func NewOrdersHandler(orders *service.OrdersService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type OrderLineItemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type OrderTotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type OrderResponseDTO struct {
	OrderNumber     string             `json:"order_number"`
	Status          string             `json:"status"`
	ProgressIndex   int                `json:"progress_index"`
	OnHappyPath     bool               `json:"on_happy_path"`
	CanCancel       bool               `json:"can_cancel"`
	Items           []OrderLineItemDTO `json:"items"`
	Totals          OrderTotalsDTO     `json:"totals"`
	ShippingAddress domain.Address     `json:"shipping_address"`
	Payment         domain.Payment     `json:"payment"`
	CreatedAt       time.Time          `json:"created_at"`
}

func toOrderResponse(order domain.Order) OrderResponseDTO {
	items := make([]OrderLineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderLineItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			Quantity:  item.Quantity,
		})
	}
	index, onPath := domain.ProgressIndex(order.Status)
	return OrderResponseDTO{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status.String(),
		ProgressIndex: index,
		OnHappyPath:   onPath,
		CanCancel:     domain.CanCancel(order.Status),
		Items:         items,
		Totals: OrderTotalsDTO{
			Subtotal: order.Totals.Subtotal.InexactFloat64(),
			Discount: order.Totals.Discount.InexactFloat64(),
			Tax:      order.Totals.Tax.InexactFloat64(),
			Shipping: order.Totals.Shipping.InexactFloat64(),
			Total:    order.Totals.Total.InexactFloat64(),
		},
		ShippingAddress: order.ShippingAddress,
		Payment:         order.Payment,
		CreatedAt:       order.CreatedAt,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "remote_unavailable", "could not load orders")
		return
	}

	response := make([]OrderResponseDTO, 0, len(orders))
	for _, order := range orders {
		response = append(response, toOrderResponse(order))
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderNumber := chi.URLParam(r, "order_number")
	if orderNumber == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_number", "order_number is required")
		return
	}

	order, err := h.orders.GetOrder(ctx, orderNumber)
	if err != nil {
		respondError(w, http.StatusBadGateway, "remote_unavailable", "could not load order")
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderNumber := chi.URLParam(r, "order_number")
	if orderNumber == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_number", "order_number is required")
		return
	}

	if err := h.orders.Cancel(ctx, orderNumber); err != nil {
		if errors.Is(err, service.ErrNotCancellable) {
			respondError(w, http.StatusConflict, "not_cancellable", "order can no longer be cancelled")
			return
		}
		respondError(w, http.StatusBadGateway, "remote_unavailable", "could not cancel order")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
