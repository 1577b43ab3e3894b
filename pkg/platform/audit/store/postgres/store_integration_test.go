//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/audit/store/postgres"
	"rentflow/pkg/testutil/containers"
)

type StoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.Pool)
}

func (s *StoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "audit_events"))
}

func (s *StoreSuite) TestAppendIsIdempotentOnID() {
	ctx := context.Background()
	actor := domain.AccountID(uuid.New())
	event := audit.Event{
		ID:        uuid.New(),
		Category:  audit.CategoryFunds,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		ActorID:   actor,
		Subject:   "offer:1",
		Action:    string(audit.EventOfferSubmitted),
		RequestID: "req-1",
	}

	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByActor(ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.ID, events[0].ID)
	s.Equal(event.Subject, events[0].Subject)
	s.True(event.Timestamp.Equal(events[0].Timestamp))
}

func (s *StoreSuite) TestListRecentNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC()
	for i, action := range []audit.AuditEvent{audit.EventListingCreated, audit.EventOfferSubmitted, audit.EventOfferAccepted} {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			ID:        uuid.New(),
			Category:  action.Category(),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Subject:   "listing:1",
			Action:    string(action),
		}))
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventOfferAccepted), events[0].Action)
	s.Equal(string(audit.EventOfferSubmitted), events[1].Action)
	s.True(events[0].ActorID.IsNil())
}
