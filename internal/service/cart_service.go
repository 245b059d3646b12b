// Package service wraps the pure aggregates with locking and side effects.
// Every mutation lands in memory synchronously and is immediately
// consistent for rendering; persistence and remote writes run as
// fire-and-forget tails that log and surface a notice on failure, never
// roll the local state back. Local state is the source of truth for the
// active session.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
)

const (
	cartStoreKey     = "cart"
	wishlistStoreKey = "wishlist"

	sideEffectTimeout = 5 * time.Second
)

// Authenticator reports whether the current session is authenticated.
// Remote writes are only attempted for authenticated sessions.
type Authenticator interface {
	IsAuthenticated() bool
}

// CartAPI is the remote cart surface the service writes through,
// best-effort.
type CartAPI interface {
	FetchCart(ctx context.Context) (domain.CartSnapshot, error)
	AddCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	ClearCart(ctx context.Context) error
}

type CartService struct {
	mu    sync.Mutex
	cart  *domain.Cart
	epoch uint64

	// writeMu serializes store writes against the logout purge so a
	// persistence tail from before the purge can never land after it.
	writeMu sync.Mutex

	store   cache.Store
	remote  CartAPI
	auth    Authenticator
	notices *Notices
	log     *logger.Logger
}

func NewCartService(store cache.Store, remote CartAPI, auth Authenticator, notices *Notices, log *logger.Logger) *CartService {
	return &CartService{
		cart:    domain.NewCart(),
		store:   store,
		remote:  remote,
		auth:    auth,
		notices: notices,
		log:     log,
	}
}

// AddItem merges the item into the cart and returns the updated snapshot.
func (s *CartService) AddItem(item domain.CartItem, qty int) domain.CartSnapshot {
	s.mu.Lock()
	s.cart.Add(item, qty)
	snap := s.cart.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	if qty >= 1 {
		s.persistAsync(snap, epoch)
		s.remoteAsync("add item", func(ctx context.Context) error {
			return s.remote.AddCartItem(ctx, item.ProductID, qty)
		})
	}
	return snap
}

func (s *CartService) RemoveItem(productID string) domain.CartSnapshot {
	s.mu.Lock()
	s.cart.Remove(productID)
	snap := s.cart.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(snap, epoch)
	s.remoteAsync("remove item", func(ctx context.Context) error {
		return s.remote.RemoveCartItem(ctx, productID)
	})
	return snap
}

func (s *CartService) UpdateQuantity(productID string, qty int) domain.CartSnapshot {
	s.mu.Lock()
	s.cart.UpdateQuantity(productID, qty)
	snap := s.cart.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	if qty >= 1 {
		s.persistAsync(snap, epoch)
		s.remoteAsync("update quantity", func(ctx context.Context) error {
			return s.remote.UpdateCartItem(ctx, productID, qty)
		})
	}
	return snap
}

func (s *CartService) Clear() domain.CartSnapshot {
	s.mu.Lock()
	s.cart.Clear()
	snap := s.cart.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(snap, epoch)
	s.remoteAsync("clear cart", func(ctx context.Context) error {
		return s.remote.ClearCart(ctx)
	})
	return snap
}

func (s *CartService) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

// ReplaceFromRemote swaps in a remote snapshot and re-persists it. Used
// only by the session reconciler; UI mutations go through the item-level
// operations.
func (s *CartService) ReplaceFromRemote(snap domain.CartSnapshot) domain.CartSnapshot {
	s.mu.Lock()
	s.cart.Replace(snap)
	fresh := s.cart.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(fresh, epoch)
	return fresh
}

// RemoteSnapshot fetches the server-side cart. The caller (the session
// reconciler) decides whether it replaces local state.
func (s *CartService) RemoteSnapshot(ctx context.Context) (domain.CartSnapshot, error) {
	return s.remote.FetchCart(ctx)
}

// Purge removes the persisted snapshot, as part of the logout cascade.
// Bumping the epoch first invalidates every persistence tail still in
// flight, so a pre-purge snapshot cannot reappear in the store.
func (s *CartService) Purge(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.store.Remove(ctx, cartStoreKey)
}

// Reset empties the aggregate without touching the store or the remote.
// The logout cascade removes the store entry itself so the whole teardown
// happens under one caller.
func (s *CartService) Reset() {
	s.mu.Lock()
	s.cart.Clear()
	s.epoch++
	s.mu.Unlock()
}

// Restore loads the persisted snapshot into the aggregate. A missing or
// corrupt entry falls back to an empty cart; restore never fails the
// caller.
func (s *CartService) Restore(ctx context.Context) {
	raw, err := s.store.Get(ctx, cartStoreKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cart restore failed", "error", err)
		}
		return
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("discarding corrupt cart snapshot", "error", err)
		if removeErr := s.store.Remove(ctx, cartStoreKey); removeErr != nil {
			s.log.Warn("corrupt cart snapshot removal failed", "error", removeErr)
		}
		return
	}

	s.mu.Lock()
	s.cart.Replace(snap)
	s.mu.Unlock()
}

// persistAsync serializes the full point-in-time snapshot it was handed,
// never the live aggregate, so out-of-order completions stay last-write-wins
// on the store without losing items. The epoch check drops writes that were
// scheduled before a reset or purge tore the aggregate down.
func (s *CartService) persistAsync(snap domain.CartSnapshot, epoch uint64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		payload, err := json.Marshal(snap)
		if err != nil {
			s.log.Warn("cart snapshot marshal failed", "error", err)
			return
		}

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if s.currentEpoch() != epoch {
			return
		}
		if err := s.store.Set(ctx, cartStoreKey, string(payload)); err != nil {
			s.log.Warn("cart snapshot persist failed", "error", err)
		}
	}()
}

func (s *CartService) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *CartService) remoteAsync(op string, call func(ctx context.Context) error) {
	if !s.auth.IsAuthenticated() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			s.log.Warn("remote cart write failed", "op", op, "error", err)
			s.notices.Push("warning", "We couldn't sync your cart change (\""+op+"\") with the server. Your cart is saved on this device.")
		}
	}()
}
