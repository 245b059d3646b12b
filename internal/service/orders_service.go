package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
)

// ErrNotCancellable rejects a cancel attempt on a non-pending order before
// any remote call is issued.
var ErrNotCancellable = errors.New("order can no longer be cancelled")

// OrdersAPI is the remote orders surface. Orders are owned by the remote
// system; this client holds read-only projections plus the single cancel
// action.
type OrdersAPI interface {
	FetchOrder(ctx context.Context, orderNumber string) (domain.Order, error)
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	CancelOrder(ctx context.Context, orderNumber string) error
}

type OrdersService struct {
	remote OrdersAPI
	log    *logger.Logger
}

func NewOrdersService(remote OrdersAPI, log *logger.Logger) *OrdersService {
	return &OrdersService{remote: remote, log: log}
}

func (s *OrdersService) GetOrder(ctx context.Context, orderNumber string) (domain.Order, error) {
	order, err := s.remote.FetchOrder(ctx, orderNumber)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order %s: %w", orderNumber, err)
	}
	return order, nil
}

func (s *OrdersService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.remote.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return orders, nil
}

// Cancel fetches the current projection and gates on the lifecycle locally;
// only a pending order reaches the remote cancel endpoint.
func (s *OrdersService) Cancel(ctx context.Context, orderNumber string) error {
	order, err := s.remote.FetchOrder(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", orderNumber, err)
	}
	if !domain.CanCancel(order.Status) {
		return ErrNotCancellable
	}
	if err := s.remote.CancelOrder(ctx, orderNumber); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderNumber, err)
	}
	s.log.Info("order cancelled", "order_number", orderNumber)
	return nil
}
