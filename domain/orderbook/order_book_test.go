package orderbook

import (
	"errors"
	"testing"

	"bookfeed/domain/event"
)

func TestAddOrderRestsAtBestBid(t *testing.T) {
	b := NewOrderBook("AAPL")
	if err := b.AddOrder("1", event.Bid, 100.50, 10, 1); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	price, size, ok := b.BestBid()
	if !ok || price != 100.50 || size != 10 {
		t.Fatalf("BestBid = %v %v %v, want 100.50 10 true", price, size, ok)
	}
}

func TestAddOrderDuplicateID(t *testing.T) {
	b := NewOrderBook("AAPL")
	if err := b.AddOrder("1", event.Bid, 100, 10, 1); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	err := b.AddOrder("1", event.Ask, 101, 5, 2)
	if !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("AddOrder duplicate = %v, want ErrDuplicateOrder", err)
	}
}

func TestAddOrderUnknownSide(t *testing.T) {
	b := NewOrderBook("AAPL")
	err := b.AddOrder("1", event.SideUnknown, 100, 10, 1)
	if !errors.Is(err, ErrUnknownSide) {
		t.Fatalf("AddOrder bad side = %v, want ErrUnknownSide", err)
	}
}

func TestBestBidIsMaxBestAskIsMin(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("b1", event.Bid, 99, 1, 1))
	must(t, b.AddOrder("b2", event.Bid, 101, 1, 2))
	must(t, b.AddOrder("b3", event.Bid, 100, 1, 3))
	must(t, b.AddOrder("a1", event.Ask, 105, 1, 4))
	must(t, b.AddOrder("a2", event.Ask, 103, 1, 5))

	price, _, _ := b.BestBid()
	if price != 101 {
		t.Fatalf("BestBid price = %v, want 101", price)
	}
	price, _, _ = b.BestAsk()
	if price != 103 {
		t.Fatalf("BestAsk price = %v, want 103", price)
	}
}

func TestCancelOrderRemovesFromBook(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	if err := b.CancelOrder("1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if b.HasOrder("1") {
		t.Fatal("order still present after cancel")
	}
	if _, _, ok := b.BestBid(); ok {
		t.Fatal("BestBid should be empty after only order cancelled")
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	b := NewOrderBook("AAPL")
	if err := b.CancelOrder("ghost"); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("CancelOrder unknown = %v, want ErrUnknownOrder", err)
	}
}

func TestCancelEmptiesPriceLevelFromLadder(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	must(t, b.CancelOrder("1"))
	if b.Bids.Len() != 0 {
		t.Fatalf("Bids.Len() = %d, want 0 (empty level must be erased)", b.Bids.Len())
	}
}

func TestModifyOrderPreservesFIFOPosition(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	must(t, b.AddOrder("2", event.Bid, 100, 5, 2))

	// Increase order 1's size; it must remain ahead of order 2 in FIFO.
	must(t, b.ModifyOrder("1", 50))

	level := b.Bids.Find(100)
	fifo := level.OrdersInFIFO()
	if len(fifo) != 2 || fifo[0].ID != "1" || fifo[1].ID != "2" {
		t.Fatalf("FIFO order after modify = %v, want [1 2]", idsOf(fifo))
	}
	if fifo[0].Size != 50 {
		t.Fatalf("order 1 size after modify = %d, want 50", fifo[0].Size)
	}
}

func TestModifyUnknownOrder(t *testing.T) {
	b := NewOrderBook("AAPL")
	if err := b.ModifyOrder("ghost", 1); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("ModifyOrder unknown = %v, want ErrUnknownOrder", err)
	}
}

func TestSizeAtPriceAggregatesAcrossOrders(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	must(t, b.AddOrder("2", event.Bid, 100, 15, 2))
	if got := b.SizeAtPrice(event.Bid, 100); got != 25 {
		t.Fatalf("SizeAtPrice = %d, want 25", got)
	}
}

func TestTradeEventDoesNotMutateBook(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))

	err := b.ApplyEvent(&event.Record{Kind: event.Trade, Symbol: "AAPL", TradePrice: 100, TradeSize: 3})
	if err != nil {
		t.Fatalf("ApplyEvent(Trade): %v", err)
	}
	if got := b.SizeAtPrice(event.Bid, 100); got != 10 {
		t.Fatalf("resting size after Trade = %d, want unchanged 10", got)
	}
}

func TestQuoteUpdateDoesNotMutateBook(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Ask, 100, 10, 1))
	err := b.ApplyEvent(&event.Record{Kind: event.QuoteUpdate, Symbol: "AAPL", Side: event.Ask, Price: 99, Size: 999})
	if err != nil {
		t.Fatalf("ApplyEvent(QuoteUpdate): %v", err)
	}
	if got := b.SizeAtPrice(event.Ask, 100); got != 10 {
		t.Fatalf("resting size after QuoteUpdate = %d, want unchanged 10", got)
	}
	if _, ok := b.GetOrder("1"); !ok {
		t.Fatal("order 1 should still be resting")
	}
}

func TestDeleteOrderIsAliasOfCancel(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	err := b.ApplyEvent(&event.Record{Kind: event.DeleteOrder, OrderID: "1"})
	if err != nil {
		t.Fatalf("ApplyEvent(DeleteOrder): %v", err)
	}
	if b.HasOrder("1") {
		t.Fatal("order should be gone after DeleteOrder event")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 10, 1))
	must(t, b.AddOrder("2", event.Ask, 101, 5, 2))
	b.Clear()
	if _, _, ok := b.BestBid(); ok {
		t.Fatal("BestBid should be empty after Clear")
	}
	if _, _, ok := b.BestAsk(); ok {
		t.Fatal("BestAsk should be empty after Clear")
	}
	if b.HasOrder("1") || b.HasOrder("2") {
		t.Fatal("orders should be gone after Clear")
	}
}

func TestLadderWalkIsPriceOrdered(t *testing.T) {
	b := NewOrderBook("AAPL")
	must(t, b.AddOrder("1", event.Bid, 100, 1, 1))
	must(t, b.AddOrder("2", event.Bid, 102, 1, 2))
	must(t, b.AddOrder("3", event.Bid, 101, 1, 3))

	var prices []float64
	b.Bids.walkDesc(func(price float64, _ *PriceLevel) {
		prices = append(prices, price)
	})
	want := []float64{102, 101, 100}
	if len(prices) != len(want) {
		t.Fatalf("walkDesc len = %d, want %d", len(prices), len(want))
	}
	for i := range want {
		if prices[i] != want[i] {
			t.Fatalf("walkDesc[%d] = %v, want %v", i, prices[i], want[i])
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func idsOf(orders []*Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
