// Package parser decodes ingress feed packets into event.Record values.
// Decoding is tolerant: an unrecognized key is ignored, a missing key
// leaves the corresponding field at its zero value, and an unrecognized
// event type or side string decodes to Unknown rather than failing the
// whole packet. Malformed JSON and a missing symbol are the only two
// decode failures — a symbol-less event has nowhere to route to.
package parser

import (
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"bookfeed/domain/event"
)

// wireEvent mirrors the ingress JSON envelope key-for-key. All fields are
// optional; sonnet.Unmarshal (a drop-in encoding/json replacement) is
// tolerant of missing keys the same way the standard decoder is.
type wireEvent struct {
	EventType      string  `json:"event_type"`
	Symbol         string  `json:"symbol"`
	Exchange       string  `json:"exchange"`
	OrderID        string  `json:"order_id"`
	Side           string  `json:"side"`
	Price          float64 `json:"price"`
	Size           uint32  `json:"size"`
	RemainingSize  uint32  `json:"remaining_size"`
	TradePrice     float64 `json:"trade_price"`
	TradeSize      uint32  `json:"trade_size"`
	IsAggressor    bool    `json:"is_aggressor"`
	StatusMessage  string  `json:"status_message"`
	IsHalted       bool    `json:"is_trading_halted"`
	Timestamp      uint64  `json:"timestamp"`
	SequenceNumber uint64  `json:"sequence_number"`
	ExchangeMonoNS uint64  `json:"exchange_mono_ns"`
}

// ParseError wraps a JSON decode failure with the raw bytes size, since
// the payload itself is often too large or too corrupt to usefully log
// in full.
type ParseError struct {
	Len int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: malformed packet (%d bytes): %v", e.Len, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errEmptySymbol is wrapped in a ParseError when a packet decodes
// cleanly as JSON but carries no symbol — there is no book to route it
// to, so it is treated the same as a malformed packet rather than
// silently creating a phantom book keyed on the empty string.
var errEmptySymbol = errors.New("empty symbol")

// Decode parses a single ingress packet into an event.Record. udpRxMonoNS
// is the monotonic timestamp the caller captured at the moment the
// packet was pulled off the socket; it is copied straight onto the
// record so downstream latency accounting has it.
func Decode(payload []byte, udpRxMonoNS uint64) (event.Record, error) {
	var w wireEvent
	if err := sonnet.Unmarshal(payload, &w); err != nil {
		return event.Record{}, &ParseError{Len: len(payload), Err: err}
	}
	if w.Symbol == "" {
		return event.Record{}, &ParseError{Len: len(payload), Err: errEmptySymbol}
	}

	r := event.Record{
		Kind:            parseKind(w.EventType),
		Symbol:          w.Symbol,
		Exchange:        w.Exchange,
		OrderID:         w.OrderID,
		Side:            parseSide(w.Side),
		Price:           w.Price,
		Size:            w.Size,
		RemainingSize:   w.RemainingSize,
		TradePrice:      w.TradePrice,
		TradeSize:       w.TradeSize,
		IsAggressor:     w.IsAggressor,
		StatusMessage:   w.StatusMessage,
		IsTradingHalted: w.IsHalted,
		Timestamp:       w.Timestamp,
		SequenceNumber:  w.SequenceNumber,
		ExchangeMonoNS:  w.ExchangeMonoNS,
		UDPRxMonoNS:     udpRxMonoNS,
	}
	return r, nil
}

func parseKind(s string) event.Kind {
	switch s {
	case "ADD_ORDER":
		return event.AddOrder
	case "MODIFY_ORDER":
		return event.ModifyOrder
	case "CANCEL_ORDER":
		return event.CancelOrder
	case "DELETE_ORDER":
		return event.DeleteOrder
	case "TRADE":
		return event.Trade
	case "QUOTE_UPDATE":
		return event.QuoteUpdate
	case "MARKET_STATUS":
		return event.MarketStatus
	default:
		return event.Unknown
	}
}

func parseSide(s string) event.Side {
	switch s {
	case "BID":
		return event.Bid
	case "ASK":
		return event.Ask
	default:
		return event.SideUnknown
	}
}
