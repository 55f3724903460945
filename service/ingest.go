package service

import (
	"bookfeed/infra/clock"
	"bookfeed/infra/netfeed"
	"bookfeed/infra/parser"
	"bookfeed/infra/ring"
)

//
// ──────────────────────────────────────────────────────────
// Ingest
// ──────────────────────────────────────────────────────────
//

// Ingest is the sole producer onto the ring: it owns the ingress socket,
// decodes each packet, stamps the enqueue timestamp, and pushes the
// resulting record. Nothing else may call Ring.TryPush.
type Ingest struct {
	listener *netfeed.Listener
	ring     *ring.Ring
	counters *Counters
}

// NewIngest wires an already-bound listener to a ring and its counters.
func NewIngest(listener *netfeed.Listener, r *ring.Ring, counters *Counters) *Ingest {
	return &Ingest{listener: listener, ring: r, counters: counters}
}

// Run drives the receive loop until shutdown reports true. A malformed
// packet is counted and skipped; a full ring drops the decoded record and
// counts it, rather than blocking the ingress socket waiting for the
// consumer to catch up.
func (in *Ingest) Run(shutdown func() bool) error {
	return in.listener.Run(shutdown, in.onPacket)
}

func (in *Ingest) onPacket(payload []byte, rxMonoNS uint64) {
	in.counters.PacketsReceived.Add(1)

	rec, err := parser.Decode(payload, rxMonoNS)
	if err != nil {
		in.counters.ParseErrors.Add(1)
		return
	}

	rec.EnqueuedMonoNS = clock.NowNS()
	if in.ring.TryPush(rec) {
		in.counters.EventsEnqueued.Add(1)
	} else {
		in.counters.EventsDropped.Add(1)
	}
}
