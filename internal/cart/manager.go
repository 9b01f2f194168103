package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/alexriley/storefront-sync/pkg/logger"
	"github.com/alexriley/storefront-sync/pkg/metrics"
)

// Manager owns one synchronizer per logical user. Anonymous callers share a
// single synchronizer; its operations all stop at the login precondition, so
// no state ever accumulates there.
type Manager struct {
	mu       sync.Mutex
	syncers  map[string]*Syncer
	gateway  Gateway
	sessions SessionProvider
	cacheTTL time.Duration
	metrics  *metrics.CartSyncMetrics
	logg     *logger.Logger
}

const anonymousKey = "anonymous"

func NewManager(gateway Gateway, sessions SessionProvider, cacheTTL time.Duration, m *metrics.CartSyncMetrics, logg *logger.Logger) (*Manager, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if sessions == nil {
		return nil, errors.New("session provider is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Manager{
		syncers:  make(map[string]*Syncer),
		gateway:  gateway,
		sessions: sessions,
		cacheTTL: cacheTTL,
		metrics:  m,
		logg:     logg,
	}, nil
}

// For returns the synchronizer for the given user, creating it on first use.
func (m *Manager) For(userID string) *Syncer {
	if userID == "" {
		userID = anonymousKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if syncer, ok := m.syncers[userID]; ok {
		return syncer
	}

	syncer, err := NewSyncer(m.gateway, m.sessions, m.cacheTTL, m.metrics, m.logg)
	if err != nil {
		// Collaborators were validated in NewManager.
		panic(err)
	}
	m.syncers[userID] = syncer
	return syncer
}

// Evict drops a user's synchronizer, discarding its cached snapshot. Used on
// logout.
func (m *Manager) Evict(userID string) {
	if userID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.syncers, userID)
}
