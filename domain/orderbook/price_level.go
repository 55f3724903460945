package orderbook

// PriceLevel is a FIFO queue of resting orders at one price, plus an index
// from order id to node for O(1) interior splice-out. The price itself is
// not stored here — it lives as the RBTree node's key — since a level
// never needs to know its own price to satisfy any of its operations.
type PriceLevel struct {
	head *Order
	tail *Order

	byID map[string]*Order

	TotalSize  uint32
	OrderCount int
}

func newPriceLevel() *PriceLevel {
	return &PriceLevel{byID: make(map[string]*Order, 4)}
}

// Enqueue appends a new resting order at the tail of the FIFO list.
// Callers (OrderBook.AddOrder) are responsible for rejecting a duplicate id
// before calling this — the global order-id index is the source of truth
// for uniqueness, so a duplicate
// cannot reach the level in the first place.
func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.byID[o.ID] = o
	p.TotalSize += o.Size
	p.OrderCount++
}

// PopHead removes and returns the oldest (head) entry.
func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}
	p.removeNode(o)
	return o
}

// Head returns the first (oldest) entry without removing it.
func (p *PriceLevel) Head() *Order {
	return p.head
}

// Remove splices an interior (or head/tail) order out of the FIFO in O(1)
// given the node handle already resolved via byID. This is the stable
// handle in place of an O(n) rebuild-the-whole-map approach.
func (p *PriceLevel) Remove(id string) *Order {
	o, ok := p.byID[id]
	if !ok {
		return nil
	}
	p.removeNode(o)
	return o
}

func (p *PriceLevel) removeNode(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next, o.prev = nil, nil

	delete(p.byID, o.ID)
	p.TotalSize -= o.Size
	p.OrderCount--
}

// Modify changes the size of a resting order in place. Position in the
// FIFO is preserved regardless of whether the size grows or shrinks — see
// DESIGN.md for the Open Question this resolves. Returns false if the id
// is not resting at this level.
func (p *PriceLevel) Modify(id string, newSize uint32) bool {
	o, ok := p.byID[id]
	if !ok {
		return false
	}
	p.TotalSize = p.TotalSize - o.Size + newSize
	o.Size = newSize
	return true
}

// Get returns the resting order for id without removing it.
func (p *PriceLevel) Get(id string) (*Order, bool) {
	o, ok := p.byID[id]
	return o, ok
}

// Empty reports whether the level currently holds no resting orders. An
// empty level must never exist in a ladder; callers
// erase it from the RBTree as soon as this returns true.
func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// OrdersInFIFO returns the resting orders in insertion (time-priority)
// order. Used by tests; never on the hot path.
func (p *PriceLevel) OrdersInFIFO() []*Order {
	out := make([]*Order, 0, p.OrderCount)
	for o := p.head; o != nil; o = o.next {
		out = append(out, o)
	}
	return out
}
