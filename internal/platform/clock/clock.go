// Package clock provides the logical time the marketplace compares offer
// dates against. Time never moves backwards.
package clock

import (
	"context"
	"math"
	"sync"
	"time"

	"rentflow/internal/platform/config"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
)

// Manual is advanced explicitly by the host.
type Manual struct {
	mu   sync.RWMutex
	tick domain.Tick
}

func NewManual(start domain.Tick) *Manual {
	return &Manual{tick: start}
}

func (m *Manual) Now(context.Context) domain.Tick {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tick
}

// Advance moves time forward by ticks and returns the new time.
func (m *Manual) Advance(ticks uint64) (domain.Tick, error) {
	if ticks == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "ticks must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.tick) > math.MaxUint64-ticks {
		return 0, dErrors.New(dErrors.CodeValidation, "clock would overflow")
	}
	m.tick += domain.Tick(ticks)
	return m.tick, nil
}

// Interval derives ticks from wall time: one tick per interval since genesis,
// offset by start.
type Interval struct {
	genesis  time.Time
	interval time.Duration
	start    domain.Tick
	now      func() time.Time
}

func NewInterval(genesis time.Time, interval time.Duration, start domain.Tick) *Interval {
	return &Interval{genesis: genesis, interval: interval, start: start, now: time.Now}
}

func (c *Interval) Now(context.Context) domain.Tick {
	elapsed := c.now().Sub(c.genesis)
	if elapsed <= 0 || c.interval <= 0 {
		return c.start
	}
	return c.start + domain.Tick(elapsed/c.interval)
}

// Source is what the service reads.
type Source interface {
	Now(ctx context.Context) domain.Tick
}

// New builds the clock selected by cfg. The returned *Manual is nil in
// interval mode.
func New(cfg config.ClockConfig) (Source, *Manual) {
	if cfg.Mode == "interval" {
		genesis := cfg.Genesis
		if genesis.IsZero() {
			genesis = time.Now()
		}
		return NewInterval(genesis, cfg.Interval, domain.Tick(cfg.Start)), nil
	}
	m := NewManual(domain.Tick(cfg.Start))
	return m, m
}
