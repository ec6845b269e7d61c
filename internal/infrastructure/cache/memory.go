package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
)

type memoryEntry struct {
	state     entity.SubscriptionState
	expiresAt time.Time
}

// MemoryStatusCache is a process-local StatusCache used when Redis is not configured.
type MemoryStatusCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ repository.StatusCache = (*MemoryStatusCache)(nil)

func NewMemoryStatusCache(ttl time.Duration) *MemoryStatusCache {
	return &MemoryStatusCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryStatusCache) Get(ctx context.Context, userID string) (*entity.SubscriptionState, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Before(entry.expiresAt) {
		state := entry.state
		return &state, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a Set may have refreshed the entry since the read lock was released
	current, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(current.expiresAt) {
		delete(c.entries, userID)
		return nil, false
	}
	state := current.state
	return &state, true
}

func (c *MemoryStatusCache) Set(ctx context.Context, state *entity.SubscriptionState) {
	if c.ttl <= 0 || state == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[state.UserID] = memoryEntry{state: *state, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryStatusCache) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
