package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

type memoryItem struct {
	id        identity.Identity
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Entries are evicted lazily on read.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

// NewMemory returns an empty in-memory identity cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

func (m *Memory) Get(_ context.Context, subject string) (identity.Identity, bool) {
	m.mu.RLock()
	item, ok := m.items[subject]
	m.mu.RUnlock()

	if !ok {
		return identity.Identity{}, false
	}
	if time.Now().After(item.expiresAt) {
		m.mu.Lock()
		delete(m.items, subject)
		m.mu.Unlock()
		return identity.Identity{}, false
	}
	return item.id, true
}

func (m *Memory) Set(_ context.Context, subject string, id identity.Identity, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.items[subject] = memoryItem{id: id, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, subject string) {
	m.mu.Lock()
	delete(m.items, subject)
	m.mu.Unlock()
}
