package sts

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultPacing is the spacing the calculator tolerates between queries.
const DefaultPacing = time.Second

// Pacer spaces calls to the calculator across every worker sharing it. On a
// 429 it doubles the interval, up to four times the base; each success
// shrinks it back toward the base by 20%.
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	base    time.Duration
	current time.Duration
}

// NewPacer creates a pacer allowing one call per interval. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	p := &Pacer{base: interval, current: interval}
	if interval <= 0 {
		p.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Wait blocks until the next call may start.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sts: pacer wait")
	}
	return nil
}

// Interval returns the current spacing.
func (p *Pacer) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnSuccess relaxes the interval toward its base.
func (p *Pacer) OnSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.base <= 0 || p.current == p.base {
		return
	}
	p.set(max(p.base, p.current*4/5))
}

// OnRateLimit backs off after the calculator answered 429.
func (p *Pacer) OnRateLimit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.base <= 0 {
		return
	}
	p.set(min(p.base*4, p.current*2))
	zap.L().Warn("sts: rate limited, widening pacing interval",
		zap.Duration("interval", p.current),
	)
}

func (p *Pacer) set(d time.Duration) {
	p.current = d
	p.limiter.SetLimit(rate.Every(d))
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "sts: pause")
	}
}
