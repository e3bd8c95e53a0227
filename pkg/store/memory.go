package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Suitable for a single
// instance; sessions evaporate on restart.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	// Default expiration of 1 hour, purge sweep every 10 minutes.
	return &MemoryStore{cache: cache.New(1*time.Hour, 10*time.Minute)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, bool, error) {
	if x, found := m.cache.Get(sessionID); found {
		return x.(*Session), true, nil
	}
	return nil, false, nil
}

func (m *MemoryStore) Save(_ context.Context, session *Session) error {
	m.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete(sessionID)
	return nil
}
