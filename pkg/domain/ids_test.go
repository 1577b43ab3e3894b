package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rentflow/pkg/domain-errors"
)

// TestParseAccountID_Invariants validates the parsing invariant:
// "account ids must be valid, non-empty, non-nil UUIDs"
func TestParseAccountID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAccountID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAccountID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		got, err := ParseAccountID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, AccountID(valid), got)
	})
}

func TestParseAccountID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE offers;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccountID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseCounterIDs(t *testing.T) {
	t.Run("accepts positive decimal ids", func(t *testing.T) {
		p, err := ParsePropertyID("42")
		require.NoError(t, err)
		assert.Equal(t, PropertyID(42), p)

		l, err := ParseListingID(" 7 ")
		require.NoError(t, err)
		assert.Equal(t, ListingID(7), l)

		o, err := ParseOfferID("18446744073709551615")
		require.NoError(t, err)
		assert.Equal(t, OfferID(^uint64(0)), o)
	})

	for _, input := range []string{"", "0", "-1", "abc", "1.5", "18446744073709551616"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParseOfferID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestAccountIDTextRoundTrip(t *testing.T) {
	original := AccountID(uuid.New())
	text, err := original.MarshalText()
	require.NoError(t, err)

	var decoded AccountID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)
	assert.False(t, decoded.IsNil())
}

func TestHashOf_NormalizesInput(t *testing.T) {
	assert.Equal(t, HashOf("ab1 2cd"), HashOf("  AB1 2CD "))
	assert.NotEqual(t, HashOf("1 High Street"), HashOf("2 High Street"))
	assert.False(t, HashOf("x").IsZero())

	parsed, err := ParseHash(HashOf("x").String())
	require.NoError(t, err)
	assert.Equal(t, HashOf("x"), parsed)

	_, err = ParseHash("abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
