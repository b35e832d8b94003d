package pacer

import (
	"context"
	"time"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
)

var timeNow = func() time.Time {
	return time.Now()
}

var wait = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loop drives Count acquire and deliver cycles, holding each cycle to at
// least Period. A zero Period runs unthrottled.
type Loop struct {
	Period time.Duration
	Count  int
}

type Stats struct {
	Iterations int
	Elapsed    time.Duration
	Slowest    time.Duration
}

// Run stops at the first failure from the source or the consumer. The
// frame of a failed acquisition is never delivered.
func (l Loop) Run(ctx context.Context, src frame.Source, buf *frame.Buffer, consumer frame.Consumer) (Stats, error) {
	stats := Stats{}
	began := timeNow()
	done := func(err error) (Stats, error) {
		stats.Elapsed = timeNow().Sub(began)
		return stats, err
	}

	for i := 0; i < l.Count; i++ {
		if err := ctx.Err(); err != nil {
			return done(err)
		}

		start := timeNow()
		if err := src.Acquire(ctx, buf); err != nil {
			return done(err)
		}
		if err := Deliver(buf, consumer); err != nil {
			return done(err)
		}

		elapsed := timeNow().Sub(start)
		stats.Iterations++
		if elapsed > stats.Slowest {
			stats.Slowest = elapsed
		}
		log.Debug("Iteration %d took %s", i+1, elapsed)

		if l.Period > elapsed {
			if err := wait(ctx, l.Period-elapsed); err != nil {
				return done(err)
			}
		}
	}

	return done(nil)
}

// Deliver hands buf to the consumer to display and then flush.
func Deliver(buf *frame.Buffer, consumer frame.Consumer) error {
	if err := consumer.Display(buf); err != nil {
		return frame.NewError(frame.OpDisplay, "", xerror.Errorf("%w: %v", frame.ErrDisplay, err))
	}
	if err := consumer.Flush(); err != nil {
		return frame.NewError(frame.OpDisplay, "", xerror.Errorf("%w: flush: %v", frame.ErrDisplay, err))
	}
	return nil
}
