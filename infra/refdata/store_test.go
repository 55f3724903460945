package refdata

import "testing"

func TestStoreLoadAndLookup(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	err = store.Load([]Instrument{
		{Symbol: "AAPL", TickSize: 0.01, ExchangeDisplay: "NASDAQ"},
		{Symbol: "BRK.A", TickSize: 1.0, ExchangeDisplay: "NYSE"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	inst, ok := store.Lookup("AAPL")
	if !ok {
		t.Fatal("expected AAPL to be found")
	}
	if inst.TickSize != 0.01 || inst.ExchangeDisplay != "NASDAQ" {
		t.Fatalf("AAPL = %+v, unexpected", inst)
	}
}

func TestStoreLookupMissingSymbol(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, ok := store.Lookup("GHOST"); ok {
		t.Fatal("expected GHOST to be missing")
	}
}

func TestStoreLoadOverwritesExisting(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	must(t, store.Load([]Instrument{{Symbol: "AAPL", TickSize: 0.01}}))
	must(t, store.Load([]Instrument{{Symbol: "AAPL", TickSize: 0.05}}))

	inst, ok := store.Lookup("AAPL")
	if !ok || inst.TickSize != 0.05 {
		t.Fatalf("AAPL = %+v %v, want TickSize=0.05", inst, ok)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
