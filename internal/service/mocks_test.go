package service

import (
	"context"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

type stubAuth struct {
	authenticated bool
}

func (s stubAuth) IsAuthenticated() bool {
	return s.authenticated
}

// failingStore simulates a broken local store; every call errors.
type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string) error   { return f.err }
func (f failingStore) Remove(context.Context, string) error        { return f.err }

type mockCartAPI struct {
	m       sync.RWMutex
	snap    domain.CartSnapshot
	err     error
	adds    int
	removes int
	updates int
	clears  int
}

func (m *mockCartAPI) FetchCart(context.Context) (domain.CartSnapshot, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return domain.CartSnapshot{}, m.err
	}
	return m.snap, nil
}

func (m *mockCartAPI) AddCartItem(context.Context, string, int) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.adds++
	return m.err
}

func (m *mockCartAPI) RemoveCartItem(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.removes++
	return m.err
}

func (m *mockCartAPI) UpdateCartItem(context.Context, string, int) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.updates++
	return m.err
}

func (m *mockCartAPI) ClearCart(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.clears++
	return m.err
}

func (m *mockCartAPI) addCalls() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.adds
}

type mockWishlistAPI struct {
	m       sync.RWMutex
	snap    domain.WishlistSnapshot
	err     error
	adds    int
	removes int
	clears  int
}

func (m *mockWishlistAPI) FetchWishlist(context.Context) (domain.WishlistSnapshot, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return domain.WishlistSnapshot{}, m.err
	}
	return m.snap, nil
}

func (m *mockWishlistAPI) AddWishlistItem(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.adds++
	return m.err
}

func (m *mockWishlistAPI) RemoveWishlistItem(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.removes++
	return m.err
}

func (m *mockWishlistAPI) ClearWishlist(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.clears++
	return m.err
}

func (m *mockWishlistAPI) addCalls() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.adds
}

type mockOrdersAPI struct {
	m       sync.RWMutex
	order   domain.Order
	orders  []domain.Order
	err     error
	cancels int
}

func (m *mockOrdersAPI) FetchOrder(context.Context, string) (domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return domain.Order{}, m.err
	}
	return m.order, nil
}

func (m *mockOrdersAPI) FetchOrders(context.Context) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *mockOrdersAPI) CancelOrder(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cancels++
	return m.err
}

func (m *mockOrdersAPI) cancelCalls() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cancels
}
