package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alexriley/storefront-sync/pkg/auth"
	"github.com/alexriley/storefront-sync/pkg/logger"
	"github.com/alexriley/storefront-sync/pkg/metrics"
	"github.com/alexriley/storefront-sync/pkg/outcome"
)

const persistWarning = "cart created but its id could not be saved for future sessions"

// Result is what every cart operation hands back: the resulting snapshot and
// an optional non-fatal warning raised along the way.
type Result struct {
	Snapshot *Snapshot `json:"snapshot"`
	Warning  string    `json:"warning,omitempty"`
}

// Syncer coordinates the gateway, the session record, and the snapshot cache
// for one logical user. A mutex serializes every operation so the
// cache-read, remote-call, cache-write section never interleaves across
// concurrent callers.
type Syncer struct {
	mu       sync.Mutex
	gateway  Gateway
	sessions SessionProvider
	cache    *SnapshotCache
	metrics  *metrics.CartSyncMetrics
	logg     *logger.Logger
}

// NewSyncer wires a synchronizer for one user. cacheTTL bounds how long a
// cached snapshot is trusted; zero disables expiry.
func NewSyncer(gateway Gateway, sessions SessionProvider, cacheTTL time.Duration, m *metrics.CartSyncMetrics, logg *logger.Logger) (*Syncer, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if sessions == nil {
		return nil, errors.New("session provider is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Syncer{
		gateway:  gateway,
		sessions: sessions,
		cache:    NewSnapshotCache(cacheTTL),
		metrics:  m,
		logg:     logg,
	}, nil
}

// guard runs the common precondition: logged in, then verified. Both checks
// complete before any I/O is attempted.
func (s *Syncer) guard(id auth.Identity) error {
	if !s.sessions.IsLoggedIn(id) {
		return ErrNotLoggedIn
	}
	if !s.sessions.IsVerified(id) {
		return ErrNotVerified
	}
	return nil
}

// getCartLocked resolves the current snapshot with the syncer lock held:
// cache hit wins, then fetch-by-id when the record names a cart, then
// creation. A persist failure after creation is surfaced as a warning on the
// result, not an error.
func (s *Syncer) getCartLocked(ctx context.Context, id auth.Identity) (Result, error) {
	if snapshot := s.cache.Get(); snapshot != nil {
		return Result{Snapshot: snapshot}, nil
	}

	record, err := s.sessions.Record(ctx, id)
	if err != nil {
		return Result{}, err
	}

	if record.HasCart() {
		snapshot, err := s.gateway.FetchCart(ctx, record.AccessToken, record.CartID)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(snapshot)
		return Result{Snapshot: snapshot}, nil
	}

	snapshot, err := s.gateway.CreateCart(ctx, record.AccessToken, s.sessions.Email(id))
	if err != nil {
		return Result{}, err
	}
	s.cache.Set(snapshot)

	record.CartID = snapshot.ID
	if err := s.sessions.SaveRecord(ctx, id, record); err != nil {
		s.metrics.IncPersistWarning()
		s.logg.Error(s.logg.WithCartID(ctx, snapshot.ID), "failed to persist cart id to session record", err)
		return Result{Snapshot: snapshot, Warning: persistWarning}, nil
	}
	return Result{Snapshot: snapshot}, nil
}

// GetCart returns the current snapshot, establishing a cart remotely when
// the cache is cold.
func (s *Syncer) GetCart(ctx context.Context, id auth.Identity) (Result, error) {
	return s.run(ctx, id, "get_cart", func(ctx context.Context) (Result, error) {
		return s.getCartLocked(ctx, id)
	})
}

// WatchCart exposes GetCart as the single-shot tri-state sequence: a pending
// marker, then exactly one ready-or-failed outcome.
func (s *Syncer) WatchCart(ctx context.Context, id auth.Identity) <-chan outcome.Outcome[Result] {
	return outcome.Observe(ctx, func(ctx context.Context) (Result, error) {
		return s.GetCart(ctx, id)
	})
}

// AddItem adds a variant to the cart. A variant already present is rejected
// locally without a backend call.
func (s *Syncer) AddItem(ctx context.Context, id auth.Identity, variantID string, quantity int) (Result, error) {
	return s.run(ctx, id, "add_item", func(ctx context.Context) (Result, error) {
		current, warning, err := s.establishLocked(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if current.HasVariant(variantID) {
			return Result{}, ErrItemAlreadyAdded
		}

		record, err := s.sessions.Record(ctx, id)
		if err != nil {
			return Result{}, err
		}
		snapshot, err := s.gateway.AddLine(ctx, record.AccessToken, current.ID, variantID, quantity)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(snapshot)
		return Result{Snapshot: snapshot, Warning: warning}, nil
	})
}

// RemoveItem removes a cart line. A line the cart does not hold is rejected
// locally without a backend call.
func (s *Syncer) RemoveItem(ctx context.Context, id auth.Identity, lineID string) (Result, error) {
	return s.run(ctx, id, "remove_item", func(ctx context.Context) (Result, error) {
		current, warning, err := s.establishLocked(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if !current.HasLine(lineID) {
			return Result{}, ErrNoItemFound
		}

		record, err := s.sessions.Record(ctx, id)
		if err != nil {
			return Result{}, err
		}
		snapshot, err := s.gateway.RemoveLine(ctx, record.AccessToken, current.ID, lineID)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(snapshot)
		return Result{Snapshot: snapshot, Warning: warning}, nil
	})
}

// ChangeQuantity sets a line's quantity. No pre-existence check is made; the
// backend decides, and the resulting snapshot is returned like every other
// mutation.
func (s *Syncer) ChangeQuantity(ctx context.Context, id auth.Identity, lineID string, quantity int) (Result, error) {
	return s.run(ctx, id, "change_quantity", func(ctx context.Context) (Result, error) {
		current, warning, err := s.establishLocked(ctx, id)
		if err != nil {
			return Result{}, err
		}

		record, err := s.sessions.Record(ctx, id)
		if err != nil {
			return Result{}, err
		}
		snapshot, err := s.gateway.UpdateLineQuantity(ctx, record.AccessToken, current.ID, lineID, quantity)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(snapshot)
		return Result{Snapshot: snapshot, Warning: warning}, nil
	})
}

// ApplyDiscount attaches a discount code. A code the backend rejects still
// yields success; the snapshot simply carries a zero discount.
func (s *Syncer) ApplyDiscount(ctx context.Context, id auth.Identity, code string) (Result, error) {
	return s.run(ctx, id, "apply_discount", func(ctx context.Context) (Result, error) {
		current, warning, err := s.establishLocked(ctx, id)
		if err != nil {
			return Result{}, err
		}

		record, err := s.sessions.Record(ctx, id)
		if err != nil {
			return Result{}, err
		}
		snapshot, err := s.gateway.ApplyDiscountCode(ctx, record.AccessToken, current.ID, code)
		if err != nil {
			return Result{}, err
		}
		s.cache.Set(snapshot)
		return Result{Snapshot: snapshot, Warning: warning}, nil
	})
}

// ClearLocalCart empties the snapshot cache. No precondition, no backend
// call; always reports completion.
func (s *Syncer) ClearLocalCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
	return true
}

// ForgetCart blanks the stored cart id so the next session starts fresh. The
// remote cart is left alone and the local cache is cleared separately.
func (s *Syncer) ForgetCart(ctx context.Context, id auth.Identity) error {
	if err := s.guard(id); err != nil {
		s.metrics.IncFailure("forget_cart")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.sessions.Record(ctx, id)
	if err != nil {
		s.metrics.IncFailure("forget_cart")
		return err
	}
	record.CartID = ""
	if err := s.sessions.SaveRecord(ctx, id, record); err != nil {
		s.metrics.IncFailure("forget_cart")
		return err
	}
	s.metrics.IncSuccess("forget_cart")
	return nil
}

// run wraps one cart operation: precondition, lock, body, metrics.
func (s *Syncer) run(ctx context.Context, id auth.Identity, operation string, fn func(context.Context) (Result, error)) (Result, error) {
	if err := s.guard(id); err != nil {
		s.metrics.IncFailure(operation)
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := fn(s.logg.WithOperation(ctx, operation))
	if err != nil {
		s.metrics.IncFailure(operation)
		return Result{}, err
	}
	s.metrics.IncSuccess(operation)
	return result, nil
}

// establishLocked returns the snapshot a mutation should work against,
// resolving the cold path through getCartLocked. Any cold-path failure is
// reported as the cart being unavailable.
func (s *Syncer) establishLocked(ctx context.Context, id auth.Identity) (*Snapshot, string, error) {
	if snapshot := s.cache.Get(); snapshot != nil {
		return snapshot, "", nil
	}
	result, err := s.getCartLocked(ctx, id)
	if err != nil || result.Snapshot == nil {
		if err != nil {
			s.logg.Error(ctx, "failed to establish cart for mutation", err)
		}
		return nil, "", ErrCartUnavailable
	}
	return result.Snapshot, result.Warning, nil
}
