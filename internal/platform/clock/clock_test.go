package clock

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentflow/internal/platform/config"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
)

func TestManual(t *testing.T) {
	ctx := context.Background()
	c := NewManual(50)
	assert.Equal(t, domain.Tick(50), c.Now(ctx))

	now, err := c.Advance(51)
	require.NoError(t, err)
	assert.Equal(t, domain.Tick(101), now)
	assert.Equal(t, domain.Tick(101), c.Now(ctx))

	_, err = c.Advance(0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = c.Advance(math.MaxUint64)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, domain.Tick(101), c.Now(ctx), "failed advance leaves time unchanged")
}

func TestInterval(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInterval(genesis, 6*time.Second, 10)

	c.now = func() time.Time { return genesis.Add(-time.Hour) }
	assert.Equal(t, domain.Tick(10), c.Now(ctx), "before genesis")

	c.now = func() time.Time { return genesis.Add(59 * time.Second) }
	assert.Equal(t, domain.Tick(19), c.Now(ctx))

	c.now = func() time.Time { return genesis.Add(60 * time.Second) }
	assert.Equal(t, domain.Tick(20), c.Now(ctx))
}

func TestNew(t *testing.T) {
	src, manual := New(config.ClockConfig{Mode: "manual", Start: 7})
	require.NotNil(t, manual)
	assert.Equal(t, domain.Tick(7), src.Now(context.Background()))

	src, manual = New(config.ClockConfig{Mode: "interval", Interval: time.Second})
	assert.Nil(t, manual)
	assert.IsType(t, &Interval{}, src)
}
