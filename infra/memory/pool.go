package memory

import "sync"

// Pool is a typed object pool used to avoid GC churn on the hot path —
// the consumer loop borrows an *orderbook.Order from a Pool instead of
// allocating one per AddOrder, and returns it once the order is fully
// cancelled out of the book.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	p.p.Put(v)
}
