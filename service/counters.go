package service

import "sync/atomic"

// Counters are the process-wide health counters the ingest and consumer
// loops update as they run. All fields are atomic so main.go can read
// them from a periodic reporting goroutine without introducing a lock
// into either hot loop.
type Counters struct {
	PacketsReceived atomic.Uint64
	ParseErrors     atomic.Uint64
	EventsEnqueued  atomic.Uint64
	EventsDropped   atomic.Uint64 // ring was full
	EventsApplied   atomic.Uint64

	// ApplyEvent failures, split by which sentinel OrderBook error came
	// back so an operator can tell a replayed duplicate order id apart
	// from a reference to an order that never existed.
	DuplicateOrderErrors atomic.Uint64
	UnknownOrderErrors   atomic.Uint64
	UnknownSideErrors    atomic.Uint64

	PublishErrors  atomic.Uint64
	TickMismatches atomic.Uint64 // price off the reference tick grid; advisory only

	// Cumulative per-stage latency, in nanoseconds, summed across every
	// record the consumer has processed. Divide by LatencySamples for a
	// running mean; a stage is only summed when both of its endpoint
	// stamps are present (see event.Compute).
	LatencyExchangeToUDPNS    atomic.Uint64
	LatencyUDPToEnqueueNS     atomic.Uint64
	LatencyEnqueueToDequeueNS atomic.Uint64
	LatencyTotalNS            atomic.Uint64
	LatencySamples            atomic.Uint64
}
