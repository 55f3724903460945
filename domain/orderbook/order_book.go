// Package orderbook implements a single-writer, price-time-priority
// limit order book: one bid ladder, one ask ladder, and a flat order-id
// index across both. It never matches orders against each other — that
// is a separate matching-engine concern and explicitly out of scope here.
// Every exported method assumes it is called from a single goroutine;
// nothing here takes a lock.
package orderbook

import (
	"errors"

	"bookfeed/domain/event"
	"bookfeed/infra/memory"
)

// Errors an OrderBook operation can return. These are sentinel values,
// not typed wrappers, since callers only ever need to switch on identity
// (errors.Is) rather than string-matching a message.
var (
	ErrDuplicateOrder = errors.New("orderbook: duplicate order id")
	ErrUnknownOrder   = errors.New("orderbook: unknown order id")
	ErrUnknownSide    = errors.New("orderbook: unknown side")
)

// OrderBook holds one symbol's resting orders. It never matches orders
// against each other — trades are reported by the feed, not derived, so
// a Trade event never mutates the ladders (see ApplyEvent).
type OrderBook struct {
	Symbol string

	Bids *RBTree // descending: best bid is the maximum key
	Asks *RBTree // ascending: best ask is the minimum key

	orders map[string]*orderLoc
	pool   *memory.Pool[Order]
}

// orderLoc pins down which ladder and price an order id currently rests
// at, so Cancel/Modify can go straight to the PriceLevel instead of
// scanning both trees.
type orderLoc struct {
	side  event.Side
	price float64
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		Bids:   NewRBTree(),
		Asks:   NewRBTree(),
		orders: make(map[string]*orderLoc, 1024),
		pool:   memory.NewPool(func() *Order { return &Order{} }),
	}
}

func (b *OrderBook) ladder(side event.Side) *RBTree {
	if side == event.Bid {
		return b.Bids
	}
	return b.Asks
}

// AddOrder inserts a new resting order. Returns ErrDuplicateOrder if the
// id is already resting anywhere in this book, ErrUnknownSide if side is
// neither Bid nor Ask.
func (b *OrderBook) AddOrder(id string, side event.Side, price float64, size uint32, timestamp uint64) error {
	if side != event.Bid && side != event.Ask {
		return ErrUnknownSide
	}
	if _, exists := b.orders[id]; exists {
		return ErrDuplicateOrder
	}

	o := b.pool.Get()
	*o = Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Size:      size,
		Symbol:    b.Symbol,
		Timestamp: timestamp,
	}
	b.ladder(side).GetOrCreate(price).Enqueue(o)
	b.orders[id] = &orderLoc{side: side, price: price}
	return nil
}

// ModifyOrder changes the resting size of id in place, preserving its
// FIFO position at the price level regardless of whether the new size is
// larger or smaller than the old one. See DESIGN.md for why this
// implementation does not lose time priority on a size increase, unlike
// the common real-market convention.
func (b *OrderBook) ModifyOrder(id string, newSize uint32) error {
	loc, ok := b.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	level := b.ladder(loc.side).Find(loc.price)
	if level == nil || !level.Modify(id, newSize) {
		return ErrUnknownOrder
	}
	return nil
}

// CancelOrder removes id from the book entirely. DeleteOrder events are
// treated identically (event.DeleteOrder is a semantic alias of
// event.CancelOrder, per the feed's own vocabulary).
func (b *OrderBook) CancelOrder(id string) error {
	loc, ok := b.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	tree := b.ladder(loc.side)
	level := tree.Find(loc.price)
	if level == nil {
		return ErrUnknownOrder
	}
	removed := level.Remove(id)
	if removed == nil {
		return ErrUnknownOrder
	}
	if level.Empty() {
		tree.Delete(loc.price)
	}
	delete(b.orders, id)
	b.pool.Put(removed)
	return nil
}

// HasOrder reports whether id currently rests in this book.
func (b *OrderBook) HasOrder(id string) bool {
	_, ok := b.orders[id]
	return ok
}

// GetOrder returns the resting order for id, if any.
func (b *OrderBook) GetOrder(id string) (*Order, bool) {
	loc, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	level := b.ladder(loc.side).Find(loc.price)
	if level == nil {
		return nil, false
	}
	return level.Get(id)
}

// BestBid returns the highest bid price and its resting size, if any.
func (b *OrderBook) BestBid() (price float64, size uint32, ok bool) {
	price, lvl, found := b.Bids.BestMaxPrice()
	if !found {
		return 0, 0, false
	}
	return price, lvl.TotalSize, true
}

// BestAsk returns the lowest ask price and its resting size, if any.
func (b *OrderBook) BestAsk() (price float64, size uint32, ok bool) {
	price, lvl, found := b.Asks.BestMinPrice()
	if !found {
		return 0, 0, false
	}
	return price, lvl.TotalSize, true
}

// SizeAtPrice returns the total resting size on side at price. Returns 0
// if the side is unknown or nothing rests there.
func (b *OrderBook) SizeAtPrice(side event.Side, price float64) uint32 {
	if side != event.Bid && side != event.Ask {
		return 0
	}
	level := b.ladder(side).Find(price)
	if level == nil {
		return 0
	}
	return level.TotalSize
}

// Clear removes every resting order from both ladders. ApplyEvent never
// calls it (a MarketStatus event leaves the book as it is), and it is
// never invoked on a restart path, since this package carries no
// cross-restart persistence.
func (b *OrderBook) Clear() {
	b.Bids = NewRBTree()
	b.Asks = NewRBTree()
	b.orders = make(map[string]*orderLoc, len(b.orders))
}

// ApplyEvent dispatches a decoded feed record to the matching book
// operation. Trade and QuoteUpdate never mutate the ladders: a Trade is
// a report of a match that already happened upstream (this book does not
// match orders itself), and a QuoteUpdate is an advisory top-of-book
// snapshot, not an instruction to resize a resting order. MarketStatus
// carries no book side effect either; callers observe
// Record.IsTradingHalted directly.
func (b *OrderBook) ApplyEvent(r *event.Record) error {
	switch r.Kind {
	case event.AddOrder:
		return b.AddOrder(r.OrderID, r.Side, r.Price, r.Size, r.Timestamp)
	case event.ModifyOrder:
		return b.ModifyOrder(r.OrderID, r.Size)
	case event.CancelOrder, event.DeleteOrder:
		return b.CancelOrder(r.OrderID)
	case event.Trade, event.QuoteUpdate, event.MarketStatus:
		return nil
	default:
		return nil
	}
}
