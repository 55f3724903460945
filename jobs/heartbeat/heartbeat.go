// Package heartbeat runs a periodic ticker that signals the consumer
// loop to publish a liveness heartbeat. It never touches the publisher
// itself — the multicast socket and the audit sink are only ever
// touched by the consumer goroutine, so publishing a heartbeat means
// handing a tick to that goroutine rather than calling out directly.
package heartbeat

import (
	"context"
	"time"
)

// Interval is how often a heartbeat goes out. The reference publisher
// sends one every second; this mirrors that cadence.
const Interval = 1 * time.Second

// Job ticks C once per Interval until its context is cancelled. C is
// buffered by one and fed non-blockingly, so a consumer loop that is
// briefly busy never backs up the ticker goroutine; a missed tick just
// means one fewer heartbeat that period.
type Job struct {
	C chan time.Time
}

func New() *Job {
	return &Job{C: make(chan time.Time, 1)}
}

// Start launches the ticker loop in its own goroutine and returns
// immediately; the loop exits when ctx is cancelled.
func (j *Job) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				select {
				case j.C <- t:
				default:
				}
			}
		}
	}()
}
