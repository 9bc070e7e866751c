package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"clothfit/internal/catalog"
	"clothfit/internal/kvstore"
)

// Registry hands out sessions by id, creating and rehydrating them on first
// contact. State is strictly per-session; there is no cross-session sharing.
// Idle sessions are evicted by Sweep; their persisted state survives and is
// rehydrated on the next attach.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry

	catalog  *catalog.Catalog
	store    kvstore.Store
	pricing  Pricing
	pageSize int
}

type registryEntry struct {
	sess     *Session
	lastSeen time.Time
}

func NewRegistry(cat *catalog.Catalog, store kvstore.Store, pricing Pricing, pageSize int) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		catalog:  cat,
		store:    store,
		pricing:  pricing,
		pageSize: pageSize,
	}
}

// Attach returns the session for the id, creating it (and rehydrating its
// persisted cart and wishlist) if unknown. An empty id gets a fresh one. The
// registry lock is held across rehydration so a concurrent attach never sees
// a partially loaded session.
func (r *Registry) Attach(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.sessions[id]; ok {
		entry.lastSeen = time.Now()
		return entry.sess, nil
	}

	sess := New(id, r.catalog, r.store, r.pricing, r.pageSize)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	r.sessions[id] = &registryEntry{sess: sess, lastSeen: time.Now()}
	return sess, nil
}

// Drop forgets the in-memory session. Persisted state is untouched.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Sweep evicts sessions not attached for at least maxIdle and returns how
// many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.sessions {
		if time.Since(entry.lastSeen) >= maxIdle {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
