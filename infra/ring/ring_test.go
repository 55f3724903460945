package ring

import (
	"sync"
	"testing"

	"bookfeed/domain/event"
)

func TestRingPushPopRoundTrip(t *testing.T) {
	r := New(4)
	rec1 := event.Record{OrderID: "1", Kind: event.AddOrder}
	rec2 := event.Record{OrderID: "2", Kind: event.AddOrder}

	if !r.TryPush(rec1) || !r.TryPush(rec2) {
		t.Fatal("push failed unexpectedly")
	}

	got, ok := r.TryPop()
	if !ok || got.OrderID != "1" {
		t.Fatalf("first pop = %+v %v, want OrderID=1", got, ok)
	}
	got, ok = r.TryPop()
	if !ok || got.OrderID != "2" {
		t.Fatalf("second pop = %+v %v, want OrderID=2", got, ok)
	}
	if _, ok := r.TryPop(); ok {
		t.Fatal("pop on empty ring should return ok=false")
	}
}

func TestRingFullReturnsFalse(t *testing.T) {
	r := New(2)
	if !r.TryPush(event.Record{OrderID: "1"}) {
		t.Fatal("first push should succeed")
	}
	if !r.TryPush(event.Record{OrderID: "2"}) {
		t.Fatal("second push should succeed")
	}
	if r.TryPush(event.Record{OrderID: "3"}) {
		t.Fatal("push into a full ring should fail rather than block")
	}
	if !r.IsFull() {
		t.Fatal("IsFull should report true once capacity is reached")
	}
}

func TestRingEmptyPopReturnsFalse(t *testing.T) {
	r := New(4)
	if _, ok := r.TryPop(); ok {
		t.Fatal("pop on a never-pushed ring should return ok=false")
	}
	if !r.IsEmpty() {
		t.Fatal("IsEmpty should report true on a fresh ring")
	}
}

func TestRingCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{0, 1},
		{1, 1},
		{3, 4},
		{4, 4},
		{5, 8},
		{1000, 1024},
	}
	for _, c := range cases {
		r := New(uint64(c.requested))
		if r.Cap() != c.want {
			t.Fatalf("New(%d).Cap() = %d, want %d", c.requested, r.Cap(), c.want)
		}
	}
}

func TestRingConcurrentProducerConsumer(t *testing.T) {
	r := New(1024)
	const n = 100000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			rec := event.Record{SequenceNumber: uint64(i)}
			for !r.TryPush(rec) {
				// ring full, spin until the consumer drains it
			}
		}
	}()

	received := make([]uint64, 0, n)
	go func() {
		defer wg.Done()
		for len(received) < n {
			rec, ok := r.TryPop()
			if !ok {
				continue
			}
			received = append(received, rec.SequenceNumber)
		}
	}()

	wg.Wait()

	for i, seq := range received {
		if seq != uint64(i) {
			t.Fatalf("out-of-order delivery at index %d: got seq %d", i, seq)
		}
	}
}
