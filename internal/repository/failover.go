package repository

import (
	"context"
	"sync/atomic"
	"time"

	"carcare/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverGuard uses the primary guard until it errors, then the fallback,
// probing the primary again once per recoveryInterval. Locks taken on one
// side are not visible on the other; the lock TTL bounds the overlap.
type FailoverGuard struct {
	primary   domain.ActionGuard
	fallback  domain.ActionGuard
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverGuard(primary, fallback domain.ActionGuard, logger *zerolog.Logger) *FailoverGuard {
	return &FailoverGuard{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the call should go to the primary.
func (g *FailoverGuard) usePrimary() bool {
	if !g.isDown.Load() {
		return true
	}
	return g.now().Sub(time.Unix(0, g.lastCheck.Load())) > recoveryInterval
}

func (g *FailoverGuard) markDown(err error) {
	if !g.isDown.Swap(true) {
		g.logger.Error().Err(err).Msg("primary guard failed, falling back to memory")
	}
	g.lastCheck.Store(g.now().UnixNano())
}

func (g *FailoverGuard) markUp() {
	if g.isDown.Swap(false) {
		g.logger.Info().Msg("primary guard recovered")
	}
}

func (g *FailoverGuard) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if g.usePrimary() {
		token, ok, err := g.primary.AcquireLock(ctx, key, ttl)
		if err == nil {
			g.markUp()
			return token, ok, nil
		}
		g.markDown(err)
	}
	return g.fallback.AcquireLock(ctx, key, ttl)
}

// ReleaseLock releases on both sides; a token unknown to one is a no-op there.
func (g *FailoverGuard) ReleaseLock(ctx context.Context, key, token string) error {
	if !g.isDown.Load() {
		if err := g.primary.ReleaseLock(ctx, key, token); err != nil {
			g.markDown(err)
		}
	}
	return g.fallback.ReleaseLock(ctx, key, token)
}

func (g *FailoverGuard) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if g.usePrimary() {
		allowed, err := g.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			g.markUp()
			return allowed, nil
		}
		g.markDown(err)
	}
	return g.fallback.CheckRateLimit(ctx, key, limit, window)
}

// Down reports whether the fallback is currently in use.
func (g *FailoverGuard) Down() bool {
	return g.isDown.Load()
}
