package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentflow/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route and retain them differently.
type EventCategory string

const (
	// CategoryFunds covers events that move or reserve ledger funds.
	CategoryFunds EventCategory = "funds"

	// CategoryAuthority covers privileged host actions: verification,
	// property registration, deposits and clock control.
	CategoryAuthority EventCategory = "authority"

	// CategoryOperations covers routine marketplace activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted after a command commits. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID        `json:"id"`
	Category  EventCategory    `json:"category"`
	Timestamp time.Time        `json:"timestamp"`
	ActorID   domain.AccountID `json:"actor_id,omitzero"`
	// Subject names the entity acted on, e.g. "offer:7" or an account id.
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	// Identity events
	EventApplicantRegistered AuditEvent = "applicant_registered"
	EventLandlordRegistered  AuditEvent = "landlord_registered"

	// Catalog events
	EventPropertyRegistered AuditEvent = "property_registered"
	EventListingCreated     AuditEvent = "listing_created"

	// Offer events
	EventOfferSubmitted AuditEvent = "offer_submitted"
	EventOfferSigned    AuditEvent = "offer_signed"
	EventOfferAccepted  AuditEvent = "offer_accepted"

	// Host events
	EventLedgerDeposit AuditEvent = "ledger_deposit"
	EventClockAdvanced AuditEvent = "clock_advanced"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventOfferSubmitted: CategoryFunds,
	EventOfferAccepted:  CategoryFunds,
	EventLedgerDeposit:  CategoryFunds,

	EventApplicantRegistered: CategoryAuthority,
	EventLandlordRegistered:  CategoryAuthority,
	EventPropertyRegistered:  CategoryAuthority,
	EventClockAdvanced:       CategoryAuthority,

	EventListingCreated: CategoryOperations,
	EventOfferSigned:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists events for later query.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor domain.AccountID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives a copy of every stored event. Sink failures never fail the
// emitting command.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
