package pacing

import (
	"context"
	"time"
)

// Sleeper blocks for a duration, honoring context cancellation. Tests
// substitute a fake to make pacing assertions wall-clock independent.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleeper(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer enforces a provider's request cadence: a short delay before every
// request, plus a longer cooldown once a fixed number of successes has
// accumulated. The cooldown fires once per threshold crossing.
type Pacer struct {
	delay         time.Duration
	cooldown      time.Duration
	cooldownEvery int

	sleep     Sleeper
	successes int
	cooledAt  int
}

// Option configures a Pacer.
type Option func(*Pacer)

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option {
	return func(p *Pacer) { p.sleep = s }
}

// New creates a Pacer. cooldownEvery <= 0 disables the cooldown.
func New(delay, cooldown time.Duration, cooldownEvery int, opts ...Option) *Pacer {
	p := &Pacer{
		delay:         delay,
		cooldown:      cooldown,
		cooldownEvery: cooldownEvery,
		sleep:         defaultSleeper,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until the next request may be issued.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.delay
	if p.cooldownEvery > 0 && p.successes > 0 &&
		p.successes%p.cooldownEvery == 0 && p.successes != p.cooledAt {
		d += p.cooldown
		p.cooledAt = p.successes
	}
	return p.sleep(ctx, d)
}

// Success records one completed request, advancing the cooldown counter.
func (p *Pacer) Success() { p.successes++ }

// Successes returns the number of recorded successes.
func (p *Pacer) Successes() int { return p.successes }
