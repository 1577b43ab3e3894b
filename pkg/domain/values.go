package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	dErrors "rentflow/pkg/domain-errors"
)

// Tick is a point in logical time. The host advances it between commands;
// the marketplace only reads it.
type Tick uint64

// Amount is a quantity of the ledger's fungible asset.
type Amount uint64

// Hash is a 256-bit digest used for address and postal-code commitments.
type Hash [32]byte

// HashOf returns the blake2b-256 digest of a normalized (trimmed,
// upper-cased) value, so "ab1 2cd " and "AB1 2CD" commit to the same hash.
func HashOf(value string) Hash {
	return Hash(blake2b.Sum256([]byte(strings.ToUpper(strings.TrimSpace(value)))))
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash decodes a 64 character hex digest.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(len(h)) {
		return h, dErrors.New(dErrors.CodeInvalidInput, "hash must be 64 hex characters")
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid hash")
	}
	return h, nil
}
