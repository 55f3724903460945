// Package publisher fans a processed book state out three ways: the
// UDP multicast egress feed downstream consumers read directly, a Kafka
// topic mirroring trade prints for audit/replay, and a second Kafka
// topic mirroring book snapshots and heartbeats. All three are
// best-effort — a publish failure is returned to the consumer loop that
// produced the update, which counts it; it is never fatal.
package publisher

import (
	"encoding/json"
	"errors"
	"net"
	"strconv"
)

// Price6 formats a float64 with exactly six fractional digits, matching
// the downstream feed's wire contract for every price field. A plain
// float64 marshals to JSON with the shortest round-tripping
// representation instead, which is not what the egress format promises.
type Price6 float64

func (p Price6) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 6, 64)), nil
}

// MessageType is the egress envelope's discriminator, matching the
// downstream feed's wire contract exactly: 0 is an order book update, 1
// a trade print, 2 a heartbeat.
type MessageType int

const (
	OrderBookUpdate MessageType = 0
	TradeUpdate     MessageType = 1
	Heartbeat       MessageType = 2
)

// envelope is the fixed outer JSON shape every egress message uses.
// Fields are ordered to match the reference publisher's own
// string-concatenation output (type, symbol, timestamp, data).
type envelope struct {
	Type      MessageType     `json:"type"`
	Symbol    string          `json:"symbol"`
	Timestamp uint64          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PublishError wraps a failed egress send.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string { return "publisher: " + e.Op + ": " + e.Err.Error() }
func (e *PublishError) Unwrap() error { return e.Err }

// MulticastPublisher sends the egress envelope to a UDP multicast group.
type MulticastPublisher struct {
	conn *net.UDPConn

	MessagesSent uint64
	BytesSent    uint64
}

// NewMulticastPublisher dials a UDP multicast destination. TTL is left
// at the platform default (1, local subnet only) — customizing it needs
// golang.org/x/net/ipv4's PacketConn, which is outside this stack; a
// deployment that needs to cross a router configures it at the network
// layer instead.
func NewMulticastPublisher(group string, port int) (*MulticastPublisher, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	if addr.IP == nil {
		return nil, &PublishError{Op: "dial", Err: errors.New("invalid multicast address " + group)}
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, &PublishError{Op: "dial", Err: err}
	}
	return &MulticastPublisher{conn: conn}, nil
}

func (p *MulticastPublisher) Close() error {
	return p.conn.Close()
}

// OrderBookSnapshot is the payload of an OrderBookUpdate message.
type OrderBookSnapshot struct {
	BestBidPrice   Price6 `json:"best_bid_price"`
	BestBidSize    uint32 `json:"best_bid_size"`
	BestAskPrice   Price6 `json:"best_ask_price"`
	BestAskSize    uint32 `json:"best_ask_size"`
	Spread         Price6 `json:"spread"`
	Midprice       Price6 `json:"midprice"`
	QuoteImbalance Price6 `json:"quote_imbalance"`
}

// TradePrint is the payload of a TradeUpdate message.
type TradePrint struct {
	Price         Price6 `json:"price"`
	Size          uint32 `json:"size"`
	AggressorSide string `json:"aggressor_side"`
}

// heartbeatPayload is the payload of a Heartbeat message.
type heartbeatPayload struct {
	MessagesSent uint64 `json:"messages_sent"`
	BytesSent    uint64 `json:"bytes_sent"`
}

// PublishOrderBookUpdate sends a top-of-book snapshot for symbol.
func (p *MulticastPublisher) PublishOrderBookUpdate(symbol string, snap OrderBookSnapshot, timestampNS uint64) error {
	return p.send(OrderBookUpdate, symbol, timestampNS, snap)
}

// PublishTradeUpdate sends a trade print for symbol.
func (p *MulticastPublisher) PublishTradeUpdate(symbol string, trade TradePrint, timestampNS uint64) error {
	return p.send(TradeUpdate, symbol, timestampNS, trade)
}

// PublishHeartbeat sends a liveness/throughput heartbeat, symbol-less.
func (p *MulticastPublisher) PublishHeartbeat(timestampNS uint64) error {
	return p.send(Heartbeat, "", timestampNS, heartbeatPayload{
		MessagesSent: p.MessagesSent,
		BytesSent:    p.BytesSent,
	})
}

func (p *MulticastPublisher) send(kind MessageType, symbol string, timestampNS uint64, data any) error {
	inner, err := json.Marshal(data)
	if err != nil {
		return &PublishError{Op: "marshal-data", Err: err}
	}
	out, err := json.Marshal(envelope{Type: kind, Symbol: symbol, Timestamp: timestampNS, Data: inner})
	if err != nil {
		return &PublishError{Op: "marshal-envelope", Err: err}
	}
	n, err := p.conn.Write(out)
	if err != nil {
		return &PublishError{Op: "write", Err: err}
	}
	p.MessagesSent++
	p.BytesSent += uint64(n)
	return nil
}

// ComputeSnapshot derives spread, midprice and quote imbalance from raw
// best bid/ask, matching the reference publisher's own formulas: a book
// with either price at zero reports zero spread and midprice, and quote
// imbalance is zero only when both sizes are zero, rather than dividing
// by zero.
func ComputeSnapshot(bidPrice float64, bidSize uint32, askPrice float64, askSize uint32) OrderBookSnapshot {
	snap := OrderBookSnapshot{
		BestBidPrice: Price6(bidPrice),
		BestBidSize:  bidSize,
		BestAskPrice: Price6(askPrice),
		BestAskSize:  askSize,
	}
	if bidPrice > 0 && askPrice > 0 {
		snap.Spread = Price6(askPrice - bidPrice)
		snap.Midprice = Price6((bidPrice + askPrice) / 2)
	}
	total := bidSize + askSize
	if total > 0 {
		snap.QuoteImbalance = Price6((float64(bidSize) - float64(askSize)) / float64(total))
	}
	return snap
}
