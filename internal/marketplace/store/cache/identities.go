// Package cache fronts the verified-identity sets with a read cache.
// Only positive answers are cached: identities are never revoked, so a
// cached "verified" can not go stale, while a cached "unknown" could.
package cache

import (
	"context"
	"log/slog"
	"time"

	"rentflow/internal/marketplace/service"
	"rentflow/pkg/domain"
)

const keyPrefix = "rentflow:identity:"

// Backend remembers keys for a while.
type Backend interface {
	Contains(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string, ttl time.Duration) error
}

// Identities decorates an IdentityStore. Writes go straight through and
// are not cached, since the surrounding command may still roll back.
type Identities struct {
	inner   service.IdentityStore
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Identities)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Identities) {
		i.logger = logger
	}
}

func NewIdentities(inner service.IdentityStore, backend Backend, ttl time.Duration, opts ...Option) *Identities {
	i := &Identities{
		inner:   inner,
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Decorator adapts NewIdentities to store options that wrap an
// IdentityStore.
func Decorator(backend Backend, ttl time.Duration, opts ...Option) func(service.IdentityStore) service.IdentityStore {
	return func(inner service.IdentityStore) service.IdentityStore {
		return NewIdentities(inner, backend, ttl, opts...)
	}
}

func (i *Identities) AddApplicant(ctx context.Context, account domain.AccountID) error {
	return i.inner.AddApplicant(ctx, account)
}

func (i *Identities) AddLandlord(ctx context.Context, account domain.AccountID) error {
	return i.inner.AddLandlord(ctx, account)
}

func (i *Identities) IsApplicant(ctx context.Context, account domain.AccountID) (bool, error) {
	return i.lookup(ctx, "applicant:"+account.String(), func() (bool, error) {
		return i.inner.IsApplicant(ctx, account)
	})
}

func (i *Identities) IsLandlord(ctx context.Context, account domain.AccountID) (bool, error) {
	return i.lookup(ctx, "landlord:"+account.String(), func() (bool, error) {
		return i.inner.IsLandlord(ctx, account)
	})
}

// lookup serves from the backend and falls back to load. Backend errors
// degrade to a miss.
func (i *Identities) lookup(ctx context.Context, key string, load func() (bool, error)) (bool, error) {
	key = keyPrefix + key
	hit, err := i.backend.Contains(ctx, key)
	if err != nil {
		i.logger.WarnContext(ctx, "identity cache read failed", "key", key, "error", err)
	}
	if hit {
		return true, nil
	}

	ok, err := load()
	if err != nil || !ok {
		return ok, err
	}
	if err := i.backend.Remember(ctx, key, i.ttl); err != nil {
		i.logger.WarnContext(ctx, "identity cache write failed", "key", key, "error", err)
	}
	return true, nil
}
