package state

import (
	"context"
	"time"
)

// AssignmentConfirmer confirms a tester assignment after approval. The
// returned channel yields exactly one value and is then closed.
type AssignmentConfirmer interface {
	Confirm(ctx context.Context, projectID int64, testers []string) <-chan error
}

// InstantConfirmer confirms immediately.
type InstantConfirmer struct{}

// Confirm returns an already resolved channel.
func (InstantConfirmer) Confirm(context.Context, int64, []string) <-chan error {
	ch := make(chan error, 1)
	ch <- nil
	close(ch)
	return ch
}

// DelayConfirmer resolves successfully after a fixed delay. The delay is
// not interrupted by ctx cancellation and confirmation never fails.
type DelayConfirmer struct {
	Delay time.Duration
}

// Confirm returns a channel that receives nil once Delay has elapsed.
func (c DelayConfirmer) Confirm(context.Context, int64, []string) <-chan error {
	ch := make(chan error, 1)
	go func() {
		time.Sleep(c.Delay)
		ch <- nil
		close(ch)
	}()
	return ch
}
