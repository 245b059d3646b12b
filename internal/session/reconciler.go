package session

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/service"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateMerged         State = "merged"
)

// Reconciler orchestrates the guest-to-authenticated transition. It is the
// only caller of the services' ReplaceFromRemote operations.
type Reconciler struct {
	mu    sync.RWMutex
	state State

	sfg      singleflight.Group
	session  *Manager
	cart     *service.CartService
	wishlist *service.WishlistService
	notices  *service.Notices
	log      *logger.Logger
}

func NewReconciler(session *Manager, cart *service.CartService, wishlist *service.WishlistService, notices *service.Notices, log *logger.Logger) *Reconciler {
	return &Reconciler{
		state:    StateAnonymous,
		session:  session,
		cart:     cart,
		wishlist: wishlist,
		notices:  notices,
		log:      log,
	}
}

func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Restore hydrates both aggregates from the local store (the fast path at
// startup) and, when tokens were already restored by the auth
// collaborator, runs the full login transition.
func (r *Reconciler) Restore(ctx context.Context, user *User, tokens *Tokens) {
	r.cart.Restore(ctx)
	r.wishlist.Restore(ctx)

	if tokens == nil {
		return
	}
	r.Login(ctx, user, tokens)
}

// Login stores the session and reconciles: remote cart and wishlist are
// fetched concurrently, and a non-empty remote payload replaces the local
// aggregate. Remote is authoritative once a session exists; a failed fetch
// keeps the local snapshot and surfaces a transient notice, with the
// natural retry being the next app load. Concurrent triggers collapse into
// one reconciliation. The session stays authenticating until at least one
// fetch reached the server.
func (r *Reconciler) Login(ctx context.Context, user *User, tokens *Tokens) {
	r.session.set(user, tokens)
	r.setState(StateAuthenticating)

	merged, _, _ := r.sfg.Do("reconcile", func() (interface{}, error) {
		return r.reconcile(ctx), nil
	})

	if merged.(bool) {
		r.setState(StateMerged)
	} else {
		r.log.Warn("reconciliation reached neither remote resource, staying authenticating")
	}
}

// Logout cascades a full hard reset before returning: both aggregates
// emptied, both store entries removed, session cleared. A caller never
// observes tokens gone while aggregates survive.
func (r *Reconciler) Logout(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cart.Reset()
	r.wishlist.Reset()

	if err := r.cart.Purge(ctx); err != nil {
		r.log.Warn("cart store purge failed on logout", "error", err)
	}
	if err := r.wishlist.Purge(ctx); err != nil {
		r.log.Warn("wishlist store purge failed on logout", "error", err)
	}

	r.session.clear()
	r.state = StateAnonymous
}

// reconcile runs the two fetches independently; either may complete first
// or fail alone. It reports whether at least one fetch succeeded.
func (r *Reconciler) reconcile(ctx context.Context) bool {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		fetched bool
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		snap, err := r.cart.RemoteSnapshot(ctx)
		if err != nil {
			r.log.Warn("remote cart fetch failed, keeping local cart", "error", err)
			r.notices.Push("warning", "We couldn't fetch your saved cart from the server. Showing what's on this device.")
			return
		}
		mu.Lock()
		fetched = true
		mu.Unlock()
		if len(snap.Items) == 0 {
			return
		}
		r.cart.ReplaceFromRemote(snap)
	}()

	go func() {
		defer wg.Done()
		snap, err := r.wishlist.RemoteSnapshot(ctx)
		if err != nil {
			r.log.Warn("remote wishlist fetch failed, keeping local wishlist", "error", err)
			r.notices.Push("warning", "We couldn't fetch your saved wishlist from the server. Showing what's on this device.")
			return
		}
		mu.Lock()
		fetched = true
		mu.Unlock()
		if len(snap.Items) == 0 {
			return
		}
		r.wishlist.ReplaceFromRemote(snap)
	}()

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return fetched
}

func (r *Reconciler) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}
