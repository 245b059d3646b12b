package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusApproved    OrderStatus = "approved"
	OrderStatusDispatching OrderStatus = "dispatching"
	OrderStatusInTransit   OrderStatus = "in_transit"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCompleted   OrderStatus = "completed"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

// happyPath is the strict linear progress order absent cancellation.
var happyPath = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusDispatching,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCompleted,
}

// ProgressIndex returns the position of a status on the happy path
// (pending=0 .. completed=5). Cancelled and unrecognized statuses return
// (-1, false); the remote system may send values we have never seen and
// that must render generically, never crash.
func ProgressIndex(s OrderStatus) (int, bool) {
	for i, step := range happyPath {
		if step == s {
			return i, true
		}
	}
	return -1, false
}

// CanCancel reports whether the one permitted local action is still legal.
// Cancellation is reachable only from pending and pending is never
// re-entered once left.
func CanCancel(s OrderStatus) bool {
	return s == OrderStatusPending
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderLineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type OrderTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type Payment struct {
	Method string `json:"method"`
	Last4  string `json:"last4"`
}

// Order is a read-only projection of a record owned by the remote system.
type Order struct {
	OrderNumber     string          `json:"order_number"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderLineItem `json:"items"`
	Totals          OrderTotals     `json:"totals"`
	ShippingAddress Address         `json:"shipping_address"`
	Payment         Payment         `json:"payment"`
	CreatedAt       time.Time       `json:"created_at"`
}
