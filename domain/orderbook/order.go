package orderbook

import "bookfeed/domain/event"

// Order is a resting limit order. It carries an intrusive doubly-linked
// list pointer pair so a PriceLevel can splice it out in O(1) without a
// second lookup, generalized from a numeric exchange id to a printable
// order id, and stripped of matching-engine fields (fill state, order
// type, status) since this book never matches orders against each other.
type Order struct {
	ID        string
	Side      event.Side
	Price     float64
	Size      uint32
	Symbol    string
	Timestamp uint64

	prev, next *Order
}

// Next is a read-only traversal helper, kept for callers that walk a
// level's FIFO without going through PriceLevel (e.g. snapshot builders).
func (o *Order) Next() *Order { return o.next }

// Prev is the symmetric read-only traversal helper.
func (o *Order) Prev() *Order { return o.prev }
