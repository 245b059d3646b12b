package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
)

// WishlistAPI is the remote wishlist surface, written through best-effort.
type WishlistAPI interface {
	FetchWishlist(ctx context.Context) (domain.WishlistSnapshot, error)
	AddWishlistItem(ctx context.Context, productID string) error
	RemoveWishlistItem(ctx context.Context, productID string) error
	ClearWishlist(ctx context.Context) error
}

type WishlistService struct {
	mu       sync.Mutex
	wishlist *domain.Wishlist
	epoch    uint64

	// writeMu serializes store writes against the logout purge so a
	// persistence tail from before the purge can never land after it.
	writeMu sync.Mutex

	store   cache.Store
	remote  WishlistAPI
	auth    Authenticator
	notices *Notices
	log     *logger.Logger
}

func NewWishlistService(store cache.Store, remote WishlistAPI, auth Authenticator, notices *Notices, log *logger.Logger) *WishlistService {
	return &WishlistService{
		wishlist: domain.NewWishlist(),
		store:    store,
		remote:   remote,
		auth:     auth,
		notices:  notices,
		log:      log,
	}
}

func (s *WishlistService) AddItem(item domain.WishlistItem) domain.WishlistSnapshot {
	s.mu.Lock()
	s.wishlist.Add(item)
	snap := s.wishlist.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(snap, epoch)
	s.remoteAsync("add item", func(ctx context.Context) error {
		return s.remote.AddWishlistItem(ctx, item.ProductID)
	})
	return snap
}

func (s *WishlistService) RemoveItem(productID string) domain.WishlistSnapshot {
	s.mu.Lock()
	s.wishlist.Remove(productID)
	snap := s.wishlist.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(snap, epoch)
	s.remoteAsync("remove item", func(ctx context.Context) error {
		return s.remote.RemoveWishlistItem(ctx, productID)
	})
	return snap
}

func (s *WishlistService) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Contains(productID)
}

func (s *WishlistService) Clear() domain.WishlistSnapshot {
	s.mu.Lock()
	s.wishlist.Clear()
	snap := s.wishlist.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(snap, epoch)
	s.remoteAsync("clear wishlist", func(ctx context.Context) error {
		return s.remote.ClearWishlist(ctx)
	})
	return snap
}

func (s *WishlistService) Snapshot() domain.WishlistSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Snapshot()
}

// ReplaceFromRemote swaps in a remote snapshot and re-persists it; only
// the session reconciler calls this.
func (s *WishlistService) ReplaceFromRemote(snap domain.WishlistSnapshot) domain.WishlistSnapshot {
	s.mu.Lock()
	s.wishlist.Replace(snap)
	fresh := s.wishlist.Snapshot()
	epoch := s.epoch
	s.mu.Unlock()

	s.persistAsync(fresh, epoch)
	return fresh
}

// RemoteSnapshot fetches the server-side wishlist for the reconciler.
func (s *WishlistService) RemoteSnapshot(ctx context.Context) (domain.WishlistSnapshot, error) {
	return s.remote.FetchWishlist(ctx)
}

// Purge removes the persisted snapshot, as part of the logout cascade.
// Bumping the epoch first invalidates every persistence tail still in
// flight, so a pre-purge snapshot cannot reappear in the store.
func (s *WishlistService) Purge(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.store.Remove(ctx, wishlistStoreKey)
}

func (s *WishlistService) Reset() {
	s.mu.Lock()
	s.wishlist.Clear()
	s.epoch++
	s.mu.Unlock()
}

// Restore loads the persisted snapshot; missing or corrupt entries fall
// back to an empty wishlist.
func (s *WishlistService) Restore(ctx context.Context) {
	raw, err := s.store.Get(ctx, wishlistStoreKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("wishlist restore failed", "error", err)
		}
		return
	}

	var snap domain.WishlistSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("discarding corrupt wishlist snapshot", "error", err)
		if removeErr := s.store.Remove(ctx, wishlistStoreKey); removeErr != nil {
			s.log.Warn("corrupt wishlist snapshot removal failed", "error", removeErr)
		}
		return
	}

	s.mu.Lock()
	s.wishlist.Replace(snap)
	s.mu.Unlock()
}

func (s *WishlistService) persistAsync(snap domain.WishlistSnapshot, epoch uint64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		payload, err := json.Marshal(snap)
		if err != nil {
			s.log.Warn("wishlist snapshot marshal failed", "error", err)
			return
		}

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if s.currentEpoch() != epoch {
			return
		}
		if err := s.store.Set(ctx, wishlistStoreKey, string(payload)); err != nil {
			s.log.Warn("wishlist snapshot persist failed", "error", err)
		}
	}()
}

func (s *WishlistService) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *WishlistService) remoteAsync(op string, call func(ctx context.Context) error) {
	if !s.auth.IsAuthenticated() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			s.log.Warn("remote wishlist write failed", "op", op, "error", err)
			s.notices.Push("warning", "We couldn't sync your wishlist change (\""+op+"\") with the server. Your wishlist is saved on this device.")
		}
	}()
}
