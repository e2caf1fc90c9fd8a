package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryGuard is the single-process ActionGuard used when Redis is not
// configured or unavailable.
type MemoryGuard struct {
	mu         sync.Mutex
	locks      map[string]lockEntry
	rateLimits map[string]*rateLimitEntry
	now        func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		locks:      make(map[string]lockEntry),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (g *MemoryGuard) AcquireLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if cur, ok := g.locks[key]; ok && now.Before(cur.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	g.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (g *MemoryGuard) ReleaseLock(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.locks[key]; ok && cur.token == token {
		delete(g.locks, key)
	}
	return nil
}

func (g *MemoryGuard) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	entry, ok := g.rateLimits[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		g.rateLimits[key] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}
