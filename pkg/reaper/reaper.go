package reaper

import (
	"context"
	"time"

	"presenced/pkg/broadcast"
	"presenced/pkg/logger"
	"presenced/pkg/protocol"
	"presenced/pkg/registry"
)

// Reaper periodically removes registry entries whose backing transport has
// gone silent: push records whose connection reports closed, and poll
// records whose last activity exceeded the configured timeout.
type Reaper struct {
	reg         *registry.Registry
	broadcaster *broadcast.Broadcaster
	interval    time.Duration
	pollTimeout time.Duration
	log         *logger.Logger
}

// New creates a reaper over the given registry and broadcaster
func New(reg *registry.Registry, b *broadcast.Broadcaster, interval, pollTimeout time.Duration, log *logger.Logger) *Reaper {
	return &Reaper{
		reg:         reg,
		broadcaster: b,
		interval:    interval,
		pollTimeout: pollTimeout,
		log:         log,
	}
}

// Run sweeps on a fixed period until the context is canceled
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.SweepOnce(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce examines every record and removes the dead ones, returning the
// number removed. A dead push connection is removed without a broadcast:
// the close handler normally already announced the leave, and this path is
// only a backstop for handles that report closed without firing a close
// event. A timed-out poll client gets a leave broadcast, exactly once,
// because nothing else will announce it.
func (r *Reaper) SweepOnce(now time.Time) int {
	removed := 0
	for _, rec := range r.reg.Snapshot() {
		switch rec.Kind {
		case registry.KindPush:
			if rec.Conn != nil && rec.Conn.Open() {
				continue
			}
			if r.reg.Remove(rec.Username) {
				removed++
				r.log.DebugWith("reaped dead push connection", "username", rec.Username)
			}

		case registry.KindPoll:
			if now.Sub(rec.LastSeen) <= r.pollTimeout {
				continue
			}
			if r.reg.Remove(rec.Username) {
				removed++
				r.broadcaster.Broadcast(protocol.NewLeave(rec.Username), "")
				r.log.DebugWith("reaped timed-out poll client", "username", rec.Username)
			}
		}
	}

	if removed > 0 {
		r.log.InfoWith("reap sweep removed stale clients", "removed", removed, "remaining", r.reg.Len())
	}
	return removed
}
