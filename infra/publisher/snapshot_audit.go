package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// snapshotAuditRecord is the Kafka payload mirroring one book snapshot
// or heartbeat, distinguished by the same MessageType the UDP envelope
// uses so a single consumer can demux both kinds off one topic.
type snapshotAuditRecord struct {
	Type        MessageType     `json:"type"`
	Symbol      string          `json:"symbol"`
	TimestampNS uint64          `json:"timestamp_ns"`
	Data        json.RawMessage `json:"data"`
}

// SnapshotAuditSink mirrors book snapshots and heartbeats to a Kafka
// topic, separate from TradeAuditSink's topic so the two audit streams
// can be retained, partitioned and consumed independently.
type SnapshotAuditSink struct {
	writer *kafka.Writer
}

// NewSnapshotAuditSink builds a kafka-go Writer targeting topic. Writes
// are synchronous (Async: false) so a broker-side failure surfaces to
// the caller instead of being silently dropped by an internal batch.
func NewSnapshotAuditSink(brokers []string, topic string) *SnapshotAuditSink {
	return &SnapshotAuditSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (s *SnapshotAuditSink) SendOrderBookUpdate(ctx context.Context, symbol string, snap OrderBookSnapshot, timestampNS uint64) error {
	return s.send(ctx, OrderBookUpdate, symbol, snap, timestampNS)
}

func (s *SnapshotAuditSink) SendHeartbeat(ctx context.Context, messagesSent, bytesSent uint64, timestampNS uint64) error {
	return s.send(ctx, Heartbeat, "", heartbeatPayload{MessagesSent: messagesSent, BytesSent: bytesSent}, timestampNS)
}

func (s *SnapshotAuditSink) send(ctx context.Context, kind MessageType, symbol string, data any, timestampNS uint64) error {
	inner, err := json.Marshal(data)
	if err != nil {
		return &PublishError{Op: "marshal-data", Err: err}
	}
	value, err := json.Marshal(snapshotAuditRecord{Type: kind, Symbol: symbol, TimestampNS: timestampNS, Data: inner})
	if err != nil {
		return &PublishError{Op: "marshal-record", Err: err}
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(symbol),
		Value: value,
	})
	if err != nil {
		return &PublishError{Op: "kafka-send", Err: err}
	}
	return nil
}

func (s *SnapshotAuditSink) Close() error {
	return s.writer.Close()
}
