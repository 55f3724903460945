package service

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"bookfeed/domain/event"
	"bookfeed/domain/orderbook"
	"bookfeed/infra/clock"
	"bookfeed/infra/publisher"
	"bookfeed/infra/refdata"
	"bookfeed/infra/ring"
)

//
// ──────────────────────────────────────────────────────────
// Consumer
// ──────────────────────────────────────────────────────────
//

// Consumer is the sole reader off the ring, the sole owner of every
// per-symbol OrderBook, and the sole caller into the publisher package.
// Nothing else may call Ring.TryPop, mutate an OrderBook after
// construction hands it to a Consumer, or call a MulticastPublisher
// method concurrently with this goroutine — heartbeats are delivered
// here over heartbeats rather than published directly by the heartbeat
// job, so every publisher call is serialized on this one goroutine.
type Consumer struct {
	ring       *ring.Ring
	books      map[string]*orderbook.OrderBook
	refdata    *refdata.Store
	pub        *publisher.MulticastPublisher
	trades     *publisher.TradeAuditSink
	snaps      *publisher.SnapshotAuditSink
	counters   *Counters
	heartbeats <-chan time.Time
}

// NewConsumer wires a Consumer. trades and snaps may be nil, in which
// case audit mirroring is skipped — useful for tests and for a
// deployment that runs without a Kafka cluster. heartbeats may also be
// nil to disable the heartbeat feed entirely.
func NewConsumer(
	r *ring.Ring,
	refdataStore *refdata.Store,
	pub *publisher.MulticastPublisher,
	trades *publisher.TradeAuditSink,
	snaps *publisher.SnapshotAuditSink,
	counters *Counters,
	heartbeats <-chan time.Time,
) *Consumer {
	return &Consumer{
		ring:       r,
		books:      make(map[string]*orderbook.OrderBook),
		refdata:    refdataStore,
		pub:        pub,
		trades:     trades,
		snaps:      snaps,
		counters:   counters,
		heartbeats: heartbeats,
	}
}

// bookFor returns the OrderBook for symbol, creating one on first sight.
// This is the only place a book is constructed, keeping the "one
// OrderBook per symbol, owned exclusively by the consumer" invariant in
// a single spot.
func (c *Consumer) bookFor(symbol string) *orderbook.OrderBook {
	b, ok := c.books[symbol]
	if !ok {
		b = orderbook.NewOrderBook(symbol)
		c.books[symbol] = b
	}
	return b
}

// idleYield is how long Run backs off after finding the ring empty,
// giving the ingest goroutine a chance to run without spinning a full
// core on an idle feed.
const idleYield = 50 * time.Microsecond

// Run drains the ring until shutdown reports true. An empty ring yields
// the processor via runtime.Gosched before a short sleep, rather than
// busy-spinning — this loop is latency-sensitive but not so much that it
// is worth pinning a core to a tight spin loop. A pending heartbeat tick
// is drained on every iteration so the heartbeat publish stays on this
// goroutine alongside every other publisher call. Once shutdown reports
// true, whatever is still queued is drained best-effort before Run returns.
func (c *Consumer) Run(shutdown func() bool) {
	for !shutdown() {
		select {
		case <-c.heartbeats:
			c.publishHeartbeat()
		default:
		}

		rec, ok := c.ring.TryPop()
		if !ok {
			runtime.Gosched()
			time.Sleep(idleYield)
			continue
		}
		c.process(&rec)
	}
	for {
		rec, ok := c.ring.TryPop()
		if !ok {
			return
		}
		c.process(&rec)
	}
}

func (c *Consumer) process(rec *event.Record) {
	lat := event.Compute(rec, clock.NowNS())
	c.counters.LatencyExchangeToUDPNS.Add(lat.ExchangeToUDP)
	c.counters.LatencyUDPToEnqueueNS.Add(lat.UDPToEnqueue)
	c.counters.LatencyEnqueueToDequeueNS.Add(lat.EnqueueToDequeue)
	c.counters.LatencyTotalNS.Add(lat.Total)
	c.counters.LatencySamples.Add(1)

	c.checkTickSize(rec)

	book := c.bookFor(rec.Symbol)
	if err := book.ApplyEvent(rec); err != nil {
		c.countApplyError(err)
		return
	}
	c.counters.EventsApplied.Add(1)

	switch rec.Kind {
	case event.AddOrder, event.ModifyOrder, event.CancelOrder, event.DeleteOrder, event.QuoteUpdate, event.MarketStatus:
		c.publishSnapshot(rec.Symbol, book, rec.Timestamp)
	case event.Trade:
		c.publishTrade(rec)
	}
}

// countApplyError attributes a failed ApplyEvent to the specific
// sentinel OrderBook returned, so an operator can tell a feed replaying
// a duplicate order id apart from one referencing an order that never
// existed.
func (c *Consumer) countApplyError(err error) {
	switch {
	case errors.Is(err, orderbook.ErrDuplicateOrder):
		c.counters.DuplicateOrderErrors.Add(1)
	case errors.Is(err, orderbook.ErrUnknownOrder):
		c.counters.UnknownOrderErrors.Add(1)
	case errors.Is(err, orderbook.ErrUnknownSide):
		c.counters.UnknownSideErrors.Add(1)
	}
}

// checkTickSize compares an incoming price against the symbol's
// reference tick size, if loaded. A mismatch only ever increments a
// counter — reference data absence or staleness is never a reason to
// drop a live feed event.
func (c *Consumer) checkTickSize(rec *event.Record) {
	if c.refdata == nil || rec.Price == 0 {
		return
	}
	inst, ok := c.refdata.Lookup(rec.Symbol)
	if !ok || inst.TickSize <= 0 {
		return
	}
	ticks := rec.Price / inst.TickSize
	if ticks != float64(int64(ticks)) {
		c.counters.TickMismatches.Add(1)
		log.Printf("consumer: %s price %.6f is off the %.6f tick grid", rec.Symbol, rec.Price, inst.TickSize)
	}
}

func (c *Consumer) publishSnapshot(symbol string, book *orderbook.OrderBook, timestampNS uint64) {
	if c.pub == nil {
		return
	}
	bidPrice, bidSize, _ := book.BestBid()
	askPrice, askSize, _ := book.BestAsk()
	snap := publisher.ComputeSnapshot(bidPrice, bidSize, askPrice, askSize)

	if err := c.pub.PublishOrderBookUpdate(symbol, snap, timestampNS); err != nil {
		c.counters.PublishErrors.Add(1)
	}
	if c.snaps != nil {
		if err := c.snaps.SendOrderBookUpdate(context.Background(), symbol, snap, timestampNS); err != nil {
			c.counters.PublishErrors.Add(1)
		}
	}
}

func (c *Consumer) publishTrade(rec *event.Record) {
	side := "ASK"
	if rec.IsAggressor {
		side = "BID"
	}
	trade := publisher.TradePrint{
		Price:         publisher.Price6(rec.TradePrice),
		Size:          rec.TradeSize,
		AggressorSide: side,
	}
	if c.pub != nil {
		if err := c.pub.PublishTradeUpdate(rec.Symbol, trade, rec.Timestamp); err != nil {
			c.counters.PublishErrors.Add(1)
		}
	}
	if c.trades != nil {
		if err := c.trades.Send(rec.Symbol, trade, rec.Timestamp); err != nil {
			c.counters.PublishErrors.Add(1)
		}
	}
}

// publishHeartbeat sends a liveness/throughput heartbeat and mirrors it
// to the snapshot audit topic. Called only from Run, on the same
// goroutine as every other publisher call.
func (c *Consumer) publishHeartbeat() {
	if c.pub == nil {
		return
	}
	now := uint64(time.Now().UnixNano())
	if err := c.pub.PublishHeartbeat(now); err != nil {
		c.counters.PublishErrors.Add(1)
	}
	if c.snaps != nil {
		if err := c.snaps.SendHeartbeat(context.Background(), c.pub.MessagesSent, c.pub.BytesSent, now); err != nil {
			c.counters.PublishErrors.Add(1)
		}
	}
}
