package auth

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"encore/internal/shared"
)

// Resolver is the single credential resolution path: an in-memory cache
// consulted first, then the persistent store. Writes go through to both so
// the cache never diverges from the store.
type Resolver struct {
	mu     sync.RWMutex
	cache  map[string]Credential
	store  Store
	logger *log.Logger
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store Store, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		cache:  make(map[string]Credential),
		store:  store,
		logger: logger,
	}
}

// Resolve returns the credential for a listener, preferring the in-memory
// cache. A store hit is cached for subsequent calls. Returns
// [shared.ErrNoCredential] when the listener has never authorized.
func (r *Resolver) Resolve(listenerID string) (Credential, error) {
	r.mu.RLock()
	cred, ok := r.cache[listenerID]
	r.mu.RUnlock()
	if ok {
		return cred, nil
	}

	cred, err := r.store.Load(listenerID)
	if err != nil {
		return Credential{}, err
	}

	r.mu.Lock()
	r.cache[listenerID] = cred
	r.mu.Unlock()

	r.logger.Debug("credential loaded from store", "listener_id", listenerID)
	return cred, nil
}

// Put writes a credential through the cache to the store.
func (r *Resolver) Put(listenerID string, cred Credential) error {
	if cred.Empty() {
		return fmt.Errorf("%w: credential has no access token", shared.ErrInvalidInput)
	}

	if err := r.store.Save(listenerID, cred); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	r.mu.Lock()
	r.cache[listenerID] = cred
	r.mu.Unlock()

	return nil
}

// Invalidate drops a listener's cached credential, forcing the next
// Resolve to hit the store.
func (r *Resolver) Invalidate(listenerID string) {
	r.mu.Lock()
	delete(r.cache, listenerID)
	r.mu.Unlock()
}
