// Package service is the marketplace command surface: identity
// verification, property and listing creation, the offer workflow and
// tenancy lookup. Every command reads the clock once, checks its guards in
// a fixed order and commits all writes, ledger calls included, as one unit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rentflow/internal/marketplace/metrics"
	"rentflow/internal/marketplace/models"
	"rentflow/pkg/attrs"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/requestcontext"
)

const tracerName = "rentflow/marketplace"

// Service orchestrates marketplace commands and queries.
type Service struct {
	tx             Tx
	clock          Clock
	authority      Authority
	funds          Funds
	clockControl   ClockControl
	limits         models.Limits
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLimits(limits models.Limits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithFunds enables the host ledger operations (deposit, account view).
func WithFunds(funds Funds) Option {
	return func(s *Service) {
		s.funds = funds
	}
}

// WithClockControl enables AdvanceClock.
func WithClockControl(control ClockControl) Option {
	return func(s *Service) {
		s.clockControl = control
	}
}

// New constructs a Service.
func New(tx Tx, clock Clock, authority Authority, opts ...Option) (*Service, error) {
	if tx == nil {
		return nil, errors.New("tx is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if authority == nil {
		return nil, errors.New("authority is required")
	}
	s := &Service{
		tx:        tx,
		clock:     clock,
		authority: authority,
		limits:    models.DefaultLimits(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.limits.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Now returns the current logical time.
func (s *Service) Now(ctx context.Context) domain.Tick {
	return s.clock.Now(ctx)
}

// command runs fn as one atomic unit against the time read at its start.
func (s *Service) command(ctx context.Context, name string, fn func(ctx context.Context, now domain.Tick, stores Stores) error) error {
	return s.instrument(ctx, name, func(ctx context.Context) error {
		now := s.clock.Now(ctx)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("rentflow.now", strconv.FormatUint(uint64(now), 10)))
		return s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
			return fn(ctx, now, stores)
		})
	})
}

// instrument wraps fn in a span and records its outcome.
func (s *Service) instrument(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "marketplace."+name)
	defer span.End()

	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if s.metrics != nil {
		s.metrics.ObserveCommand(name, outcome, start)
	}
	return err
}

// wrapStore passes coded errors through and marks anything else internal.
func wrapStore(err error, message string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

func (s *Service) view(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return s.tx.View(ctx, fn)
}

func (s *Service) requirePrivileged(ctx context.Context, caller domain.AccountID) error {
	if !s.authority.IsPrivileged(ctx, caller) {
		return models.ErrUnauthorized
	}
	return nil
}

func requireApplicant(ctx context.Context, stores Stores, caller domain.AccountID) error {
	ok, err := stores.Identities.IsApplicant(ctx, caller)
	if err != nil {
		return wrapStore(err, "failed to check applicant")
	}
	if !ok {
		return models.ErrUnauthorized
	}
	return nil
}

// allocate returns the next id for kind without advancing the counter.
func allocate(ctx context.Context, stores Stores, kind models.CounterKind, exhausted error) (uint64, error) {
	current, err := stores.Counters.Current(ctx, kind)
	if err != nil {
		return 0, wrapStore(err, "failed to read counter")
	}
	next, ok := models.NextIDWithin(current, stores.Counters.Ceiling())
	if !ok {
		return 0, exhausted
	}
	return next, nil
}

func advance(ctx context.Context, stores Stores, kind models.CounterKind, value uint64) error {
	if err := stores.Counters.Advance(ctx, kind, value); err != nil {
		return wrapStore(err, "failed to advance counter")
	}
	return nil
}

// logAudit logs a committed command and emits it to the audit publisher.
// attributes must include "actor_id" and "subject" as strings.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	var actor domain.AccountID
	if parsed, err := domain.ParseAccountID(attrs.ExtractString(attributes, "actor_id")); err == nil {
		actor = parsed
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:   actor,
		Subject:   attrs.ExtractString(attributes, "subject"),
		Action:    string(event),
		Decision:  attrs.ExtractString(attributes, "decision"),
		RequestID: requestID,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
