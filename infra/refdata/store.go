// Package refdata is a static, read-mostly per-symbol instrument
// metadata table: tick size and exchange display name, looked up by the
// consumer when it needs to format or validate an incoming record.
// It is loaded once at startup and never mutated by the feed itself —
// this is deliberately not order-book state, and nothing here persists
// book contents across a restart.
package refdata

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Instrument is one symbol's static reference data.
type Instrument struct {
	Symbol          string  `json:"symbol"`
	TickSize        float64 `json:"tick_size"`
	ExchangeDisplay string  `json:"exchange_display"`
}

// Store is an embedded key-value table keyed by symbol. It is safe for
// concurrent reads from multiple goroutines (pebble.DB.Get is
// concurrency-safe); writes are only ever expected at load time.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load seeds the store from a static instrument list, e.g. parsed from a
// config file at startup. Existing entries for the same symbol are
// overwritten.
func (s *Store) Load(instruments []Instrument) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, inst := range instruments {
		val, err := json.Marshal(inst)
		if err != nil {
			return fmt.Errorf("refdata: marshal %s: %w", inst.Symbol, err)
		}
		if err := batch.Set(key(inst.Symbol), val, nil); err != nil {
			return fmt.Errorf("refdata: stage %s: %w", inst.Symbol, err)
		}
	}
	return batch.Commit(pebble.Sync)
}

// Lookup returns the instrument metadata for symbol, if loaded.
func (s *Store) Lookup(symbol string) (Instrument, bool) {
	val, closer, err := s.db.Get(key(symbol))
	if err != nil {
		return Instrument{}, false
	}
	defer closer.Close()

	var inst Instrument
	if err := json.Unmarshal(val, &inst); err != nil {
		return Instrument{}, false
	}
	return inst, true
}

func key(symbol string) []byte {
	return []byte("instrument/" + symbol)
}
