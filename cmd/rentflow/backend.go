package main

import (
	"context"
	"fmt"
	"log/slog"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/service"
	"rentflow/internal/marketplace/store/cache"
	"rentflow/internal/marketplace/store/memory"
	mpostgres "rentflow/internal/marketplace/store/postgres"
	"rentflow/internal/platform/config"
	"rentflow/internal/platform/kafka"
	pg "rentflow/internal/platform/postgres"
	"rentflow/internal/platform/redis"
	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/audit/publisher"
	kafkasink "rentflow/pkg/platform/audit/publishers/kafka"
	auditmemory "rentflow/pkg/platform/audit/store/memory"
	auditpostgres "rentflow/pkg/platform/audit/store/postgres"
)

// backend is everything serve builds from config before the service.
type backend struct {
	tx        service.Tx
	funds     service.Funds
	publisher *publisher.Publisher
	checks    map[string]func(ctx context.Context) error
	closers   []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend picks PostgreSQL when a database URL is configured and the
// in-memory store otherwise.
func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *backend, err error) {
	b := &backend{checks: map[string]func(ctx context.Context) error{}}
	defer func() {
		if err != nil {
			b.close()
		}
	}()
	existential := domain.Amount(cfg.Limits.ExistentialDeposit)

	var auditStore audit.Store
	if cfg.Database.URL == "" {
		log.Warn("database.url is empty, state is kept in memory and lost on restart")
		st := memory.New(ledger.NewMemory(existential))
		b.tx, b.funds = st, st
		auditStore = auditmemory.NewInMemoryStore()
	} else {
		pool, err := pg.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.checks["postgres"] = pool.Ping

		escrow := ledger.NewPostgres(pool, existential)
		identityCache, err := openIdentityCache(ctx, cfg, log, b)
		if err != nil {
			return nil, err
		}
		b.tx = mpostgres.New(pool, escrow,
			mpostgres.WithIdentityCache(identityCache),
			mpostgres.WithTxTimeout(cfg.Server.CommandTimeout),
		)
		b.funds = escrow
		auditStore = auditpostgres.New(pool)
	}

	sinks, err := openAuditSinks(ctx, cfg, b)
	if err != nil {
		return nil, err
	}
	b.publisher = publisher.NewPublisher(auditStore,
		publisher.WithSinks(sinks...),
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)
	b.closers = append(b.closers, b.publisher.Close)
	return b, nil
}

// openIdentityCache fronts identity lookups with Redis when configured and
// an in-process cache otherwise.
func openIdentityCache(ctx context.Context, cfg config.Config, log *slog.Logger, b *backend) (func(service.IdentityStore) service.IdentityStore, error) {
	ttl := cfg.Redis.IdentityTTL
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return cache.Decorator(cache.NewLocal(ttl, 2*ttl), ttl, cache.WithLogger(log)), nil
	}
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.checks["redis"] = client.Health
	return cache.Decorator(cache.NewRedis(client.Client), ttl, cache.WithLogger(log)), nil
}

func openAuditSinks(ctx context.Context, cfg config.Config, b *backend) ([]audit.Sink, error) {
	if !cfg.Kafka.Enabled() {
		return nil, nil
	}
	client, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, client.Close)
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
		return nil, err
	}
	b.checks["kafka"] = func(ctx context.Context) error { return kafka.Ping(ctx, client) }
	return []audit.Sink{kafkasink.New(client, cfg.Kafka.AuditTopic)}, nil
}

func authorityFromConfig(ids []string) (service.StaticAuthority, error) {
	accounts := make([]domain.AccountID, 0, len(ids))
	for _, raw := range ids {
		account, err := domain.ParseAccountID(raw)
		if err != nil {
			return nil, fmt.Errorf("auth.authorities: %q: %w", raw, err)
		}
		accounts = append(accounts, account)
	}
	return service.NewStaticAuthority(accounts...), nil
}

