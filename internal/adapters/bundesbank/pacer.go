package bundesbank

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	pacerKey        = "bundesbank"
	minPacerBackoff = 50 * time.Millisecond
)

// Pacer spaces successive calls to the live source at least one interval apart.
type Pacer struct {
	limiter *limiter.Limiter
}

// NewPacer creates a Pacer allowing one call per interval. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	rate := limiter.Rate{Period: interval, Limit: 1}
	return &Pacer{limiter: limiter.New(memory.NewStore(), rate)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	for {
		lctx, err := p.limiter.Get(ctx, pacerKey)
		if err != nil {
			return fmt.Errorf("pacer: %w", err)
		}
		if !lctx.Reached {
			return nil
		}

		delay := time.Until(time.Unix(lctx.Reset, 0))
		if delay < minPacerBackoff {
			delay = minPacerBackoff
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
