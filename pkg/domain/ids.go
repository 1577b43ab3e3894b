package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "rentflow/pkg/domain-errors"
)

// AccountID identifies a marketplace participant (applicant, landlord or
// authority). It is resolved from the caller's credentials before any
// command runs.
type AccountID uuid.UUID

// PropertyID, ListingID and OfferID are allocated from monotonically
// increasing counters; zero is never a valid id.
type (
	PropertyID uint64
	ListingID  uint64
	OfferID    uint64
)

func (a AccountID) String() string { return uuid.UUID(a).String() }

// IsNil reports whether the id is the zero UUID.
func (a AccountID) IsNil() bool { return uuid.UUID(a) == uuid.Nil }

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (p PropertyID) String() string { return strconv.FormatUint(uint64(p), 10) }
func (l ListingID) String() string  { return strconv.FormatUint(uint64(l), 10) }
func (o OfferID) String() string    { return strconv.FormatUint(uint64(o), 10) }

// maxIDLength bounds parser input before any allocation happens.
const maxIDLength = 64

// ParseAccountID validates an account id at a trust boundary.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}

func ParsePropertyID(s string) (PropertyID, error) {
	n, err := parseCounterID(s, "property")
	return PropertyID(n), err
}

func ParseListingID(s string) (ListingID, error) {
	n, err := parseCounterID(s, "listing")
	return ListingID(n), err
}

func ParseOfferID(s string) (OfferID, error) {
	n, err := parseCounterID(s, "offer")
	return OfferID(n), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" || len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid account id")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid account id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be nil")
	}
	return u, nil
}

func parseCounterID(s, kind string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxIDLength {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id must be positive")
	}
	return n, nil
}
