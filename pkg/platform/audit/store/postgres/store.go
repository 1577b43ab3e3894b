package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
)

// Store implements audit.Store on the audit_events table. Appends are
// idempotent on event id.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectColumns = `
	SELECT id, category, timestamp, actor_id, subject, action, decision, reason, request_id
	FROM audit_events`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var actor *uuid.UUID
	if !event.ActorID.IsNil() {
		a := uuid.UUID(event.ActorID)
		actor = &a
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, category, timestamp, actor_id, subject, action, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		string(event.Category),
		event.Timestamp,
		actor,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByActor returns the actor's events, oldest first.
func (s *Store) ListByActor(ctx context.Context, actor domain.AccountID) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, selectColumns+`
		WHERE actor_id = $1
		ORDER BY timestamp, id`, uuid.UUID(actor))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	return scanEvents(rows)
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx, selectColumns+`
		ORDER BY timestamp DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]audit.Event, error) {
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			actor    *uuid.UUID
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&actor,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if actor != nil {
			event.ActorID = domain.AccountID(*actor)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
