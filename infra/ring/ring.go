// Package ring implements a fixed-capacity, single-producer
// single-consumer circular buffer of event.Record values. It is the sole
// hand-off point between the ingest goroutine and the consumer goroutine:
// exactly one goroutine may call TryPush, exactly one (a different one)
// may call TryPop.
package ring

import (
	"sync/atomic"

	"bookfeed/domain/event"
)

// cacheLinePad is sized to push head and tail onto separate cache lines
// so the producer spinning on tail and the consumer spinning on head
// never false-share a line: a uint64 counter plus 56 bytes of padding
// fills a typical 64-byte line.
type cacheLinePad [56]byte

// Ring is a fixed-size, power-of-two-capacity SPSC ring buffer of
// event.Record. Head and tail are atomic.Uint64 so the producer's Store
// to head and the consumer's Load of head (and vice versa for tail)
// establish the happens-before edge the single-producer/single-consumer
// contract needs — Go's atomic package guarantees sequentially consistent
// ordering, which is stronger than the acquire/release pairing this
// pattern actually requires.
type Ring struct {
	head atomic.Uint64
	_    cacheLinePad
	tail atomic.Uint64
	_    cacheLinePad

	buf  []event.Record
	mask uint64
}

// New allocates a ring whose capacity is requested rounded up to the
// next power of two — a requested capacity of 3 yields an actual
// capacity of 4, matching the reference queue's own constructor
// ("find next power of 2 >= capacity"). Mask-based indexing only works
// against a power-of-two length, so this rounding happens here rather
// than being left to the caller.
func New(requested uint64) *Ring {
	capacity := nextPow2(requested)
	return &Ring{buf: make([]event.Record, capacity), mask: capacity - 1}
}

// nextPow2 returns the smallest power of two >= n. n == 0 rounds up to
// 1, since a zero-capacity ring can never hold anything anyway.
func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// TryPush copies rec into the ring. It returns false without blocking if
// the ring is full — the caller (the ingest loop) is expected to count
// this as a dropped-under-backpressure event rather than retry, per this
// system's fail-fast queue-full policy.
func (r *Ring) TryPush(rec event.Record) bool {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = rec
	r.head.Store(h + 1)
	return true
}

// TryPop copies the oldest record out of the ring. ok is false if the
// ring is currently empty.
func (r *Ring) TryPop() (rec event.Record, ok bool) {
	t := r.tail.Load()
	h := r.head.Load()
	if t == h {
		return event.Record{}, false
	}
	rec = r.buf[t&r.mask]
	r.buf[t&r.mask] = event.Record{}
	r.tail.Store(t + 1)
	return rec, true
}

// Len returns a snapshot of the number of records currently queued. It is
// racy by construction (both counters can move between the two loads)
// and is meant for metrics/diagnostics, never for a correctness decision.
func (r *Ring) Len() int {
	h := r.head.Load()
	t := r.tail.Load()
	return int(h - t)
}

// Cap returns the ring's fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// IsFull reports whether the ring is currently full.
func (r *Ring) IsFull() bool {
	return r.head.Load()-r.tail.Load() == uint64(len(r.buf))
}

// IsEmpty reports whether the ring currently has no records queued.
func (r *Ring) IsEmpty() bool {
	return r.head.Load() == r.tail.Load()
}
