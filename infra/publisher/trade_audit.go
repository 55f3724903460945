package publisher

import (
	"encoding/json"

	"github.com/IBM/sarama"
)

// tradeAuditRecord is the Kafka payload mirroring one trade print,
// keyed by symbol so a downstream consumer can partition by instrument.
type tradeAuditRecord struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Size          uint32  `json:"size"`
	AggressorSide string  `json:"aggressor_side"`
	TimestampNS   uint64  `json:"timestamp_ns"`
}

// TradeAuditSink mirrors every trade print to a Kafka topic for
// downstream audit and replay, independent of the UDP egress feed. It
// uses sarama's synchronous producer so a caller learns immediately
// whether the broker accepted the write.
type TradeAuditSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewTradeAuditSink dials brokers and waits for every replica's ack
// before Send returns, matching the durability the trade-print record
// needs for it to be a trustworthy audit trail.
func NewTradeAuditSink(brokers []string, topic string) (*TradeAuditSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, &PublishError{Op: "kafka-dial", Err: err}
	}
	return &TradeAuditSink{producer: producer, topic: topic}, nil
}

func (s *TradeAuditSink) Send(symbol string, trade TradePrint, timestampNS uint64) error {
	value, err := json.Marshal(tradeAuditRecord{
		Symbol:        symbol,
		Price:         float64(trade.Price),
		Size:          trade.Size,
		AggressorSide: trade.AggressorSide,
		TimestampNS:   timestampNS,
	})
	if err != nil {
		return &PublishError{Op: "marshal", Err: err}
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(symbol),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return &PublishError{Op: "kafka-send", Err: err}
	}
	return nil
}

func (s *TradeAuditSink) Close() error {
	return s.producer.Close()
}
