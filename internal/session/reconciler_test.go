package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/service"
)

type fakeRemote struct {
	m            sync.RWMutex
	cart         domain.CartSnapshot
	wishlist     domain.WishlistSnapshot
	cartErr      error
	wishlistErr  error
	writesIssued int
}

func (f *fakeRemote) FetchCart(context.Context) (domain.CartSnapshot, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if f.cartErr != nil {
		return domain.CartSnapshot{}, f.cartErr
	}
	return f.cart, nil
}

func (f *fakeRemote) FetchWishlist(context.Context) (domain.WishlistSnapshot, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	if f.wishlistErr != nil {
		return domain.WishlistSnapshot{}, f.wishlistErr
	}
	return f.wishlist, nil
}

func (f *fakeRemote) write() error {
	f.m.Lock()
	defer f.m.Unlock()
	f.writesIssued++
	return nil
}

func (f *fakeRemote) AddCartItem(context.Context, string, int) error    { return f.write() }
func (f *fakeRemote) RemoveCartItem(context.Context, string) error      { return f.write() }
func (f *fakeRemote) UpdateCartItem(context.Context, string, int) error { return f.write() }
func (f *fakeRemote) ClearCart(context.Context) error                   { return f.write() }
func (f *fakeRemote) AddWishlistItem(context.Context, string) error     { return f.write() }
func (f *fakeRemote) RemoveWishlistItem(context.Context, string) error  { return f.write() }
func (f *fakeRemote) ClearWishlist(context.Context) error               { return f.write() }

type fixture struct {
	manager    *Manager
	reconciler *Reconciler
	cart       *service.CartService
	wishlist   *service.WishlistService
	store      *cache.MemoryStore
	notices    *service.Notices
	remote     *fakeRemote
}

func newFixture(remote *fakeRemote) *fixture {
	return newFixtureWithStore(remote, cache.NewMemoryStore())
}

func newFixtureWithStore(remote *fakeRemote, store cache.Store) *fixture {
	log := logger.NewNop()
	manager := NewManager()
	notices := service.NewNotices()
	cart := service.NewCartService(store, remote, manager, notices, log)
	wishlist := service.NewWishlistService(store, remote, manager, notices, log)
	memStore, _ := store.(*cache.MemoryStore)
	return &fixture{
		manager:    manager,
		reconciler: NewReconciler(manager, cart, wishlist, notices, log),
		cart:       cart,
		wishlist:   wishlist,
		store:      memStore,
		notices:    notices,
		remote:     remote,
	}
}

func testTokens() *Tokens {
	return &Tokens{Access: "access-token", Refresh: "refresh-token"}
}

func TestLogin_RemoteReplacesLocalCart(t *testing.T) {
	remote := &fakeRemote{
		cart: domain.CartSnapshot{
			Items: []domain.CartItem{{ProductID: "itemB", UnitPrice: decimal.RequireFromString("2.00"), Quantity: 2}},
		},
	}
	f := newFixture(remote)
	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)

	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	// Remote replaces, it does not merge quantities.
	snap := f.cart.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "itemB", snap.Items[0].ProductID)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, StateMerged, f.reconciler.State())
	assert.True(t, f.manager.IsAuthenticated())
}

func TestLogin_EmptyRemoteKeepsLocalCart(t *testing.T) {
	f := newFixture(&fakeRemote{})
	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)

	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	snap := f.cart.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "itemA", snap.Items[0].ProductID)
	assert.Equal(t, StateMerged, f.reconciler.State())
}

func TestLogin_FetchFailureKeepsLocalState(t *testing.T) {
	remote := &fakeRemote{
		cartErr:     fmt.Errorf("cart fetch failed"),
		wishlistErr: fmt.Errorf("wishlist fetch failed"),
	}
	f := newFixture(remote)
	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)
	f.wishlist.AddItem(domain.WishlistItem{ProductID: "saved"})

	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	assert.Equal(t, 1, f.cart.Snapshot().ItemCount)
	assert.True(t, f.wishlist.Contains("saved"))
	// Neither resource was fetched, so the merge never happened.
	assert.Equal(t, StateAuthenticating, f.reconciler.State())
	assert.True(t, f.manager.IsAuthenticated())
}

func TestLogin_FetchFailureSurfacesNotices(t *testing.T) {
	remote := &fakeRemote{cartErr: fmt.Errorf("cart fetch failed")}
	f := newFixture(remote)

	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	drained := f.notices.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "warning", drained[0].Level)
	assert.Contains(t, drained[0].Message, "cart")
}

func TestLogin_FetchesFailIndependently(t *testing.T) {
	remote := &fakeRemote{
		cartErr: fmt.Errorf("cart fetch failed"),
		wishlist: domain.WishlistSnapshot{
			Items: []domain.WishlistItem{{ProductID: "remote-saved"}},
		},
	}
	f := newFixture(remote)
	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)

	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	// The cart kept local state while the wishlist adopted the remote one.
	assert.Equal(t, "itemA", f.cart.Snapshot().Items[0].ProductID)
	assert.True(t, f.wishlist.Contains("remote-saved"))
	// One successful fetch is enough to complete the merge.
	assert.Equal(t, StateMerged, f.reconciler.State())
}

func TestLogout_CascadeResetsEverything(t *testing.T) {
	f := newFixture(&fakeRemote{})
	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)
	f.wishlist.AddItem(domain.WishlistItem{ProductID: "saved"})
	f.reconciler.Login(context.Background(), &User{ID: "u1"}, testTokens())

	// Wait for the persistence tails so the purge has something to remove.
	require.Eventually(t, func() bool {
		_, err := f.store.Get(context.Background(), "cart")
		return err == nil
	}, 200*time.Millisecond, 10*time.Millisecond)

	f.reconciler.Logout(context.Background())

	assert.Empty(t, f.cart.Snapshot().Items)
	assert.Empty(t, f.wishlist.Snapshot().Items)
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.User())
	assert.Equal(t, StateAnonymous, f.reconciler.State())

	_, err := f.store.Get(context.Background(), "cart")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
	_, err = f.store.Get(context.Background(), "wishlist")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

// slowStore delays writes long enough for a logout to overtake an
// in-flight persistence tail.
type slowStore struct {
	*cache.MemoryStore
	setDelay time.Duration
}

func (s *slowStore) Set(ctx context.Context, key, value string) error {
	time.Sleep(s.setDelay)
	return s.MemoryStore.Set(ctx, key, value)
}

func TestLogout_StalePersistCannotRepopulateStore(t *testing.T) {
	store := &slowStore{MemoryStore: cache.NewMemoryStore(), setDelay: 50 * time.Millisecond}
	f := newFixtureWithStore(&fakeRemote{}, store)

	f.cart.AddItem(domain.CartItem{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00")}, 1)
	f.wishlist.AddItem(domain.WishlistItem{ProductID: "saved"})
	f.reconciler.Logout(context.Background())

	// Give the delayed persistence tails time to land if they were going to.
	time.Sleep(150 * time.Millisecond)
	_, err := store.Get(context.Background(), "cart")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
	_, err = store.Get(context.Background(), "wishlist")
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
	assert.Empty(t, f.cart.Snapshot().Items)
	assert.Empty(t, f.wishlist.Snapshot().Items)
}

func TestRestore_HydratesFromLocalStore(t *testing.T) {
	store := cache.NewMemoryStore()
	snap := domain.CartSnapshot{
		Items: []domain.CartItem{{ProductID: "itemA", UnitPrice: decimal.RequireFromString("1.00"), Quantity: 2}},
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "cart", string(payload)))

	log := logger.NewNop()
	manager := NewManager()
	notices := service.NewNotices()
	remote := &fakeRemote{}
	cart := service.NewCartService(store, remote, manager, notices, log)
	wishlist := service.NewWishlistService(store, remote, manager, notices, log)
	reconciler := NewReconciler(manager, cart, wishlist, notices, log)

	reconciler.Restore(context.Background(), nil, nil)

	assert.Equal(t, 2, cart.Snapshot().ItemCount)
	assert.Equal(t, StateAnonymous, reconciler.State())
	assert.False(t, manager.IsAuthenticated())
}

func TestRestore_WithTokensReconciles(t *testing.T) {
	remote := &fakeRemote{
		cart: domain.CartSnapshot{
			Items: []domain.CartItem{{ProductID: "server-item", UnitPrice: decimal.RequireFromString("3.00"), Quantity: 1}},
		},
	}
	f := newFixture(remote)

	f.reconciler.Restore(context.Background(), &User{ID: "u1"}, testTokens())

	assert.Equal(t, StateMerged, f.reconciler.State())
	assert.Equal(t, "server-item", f.cart.Snapshot().Items[0].ProductID)
}

func TestManager_TokenEmptyWhenAnonymous(t *testing.T) {
	manager := NewManager()
	assert.Equal(t, "", manager.Token())
	assert.False(t, manager.IsAuthenticated())

	manager.set(&User{ID: "u1"}, testTokens())
	assert.Equal(t, "access-token", manager.Token())
}
