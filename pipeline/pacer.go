package pipeline

import (
	"context"
	"time"
)

// Pacer inserts a fixed pause after every link: LinkDelay after a normal
// iteration (including skips), ErrorDelay after an errored one.
type Pacer struct {
	LinkDelay  time.Duration
	ErrorDelay time.Duration
	SleepFunc  func(ctx context.Context, d time.Duration) error
}

func NewPacer(linkDelay, errorDelay time.Duration) *Pacer {
	return &Pacer{
		LinkDelay:  linkDelay,
		ErrorDelay: errorDelay,
		SleepFunc:  sleep,
	}
}

// Delay returns the pause that follows an outcome.
func (p *Pacer) Delay(o Outcome) time.Duration {
	if o.Status == StatusErrored {
		return p.ErrorDelay
	}
	return p.LinkDelay
}

// Wait blocks for the outcome's delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, o Outcome) error {
	return p.SleepFunc(ctx, p.Delay(o))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
