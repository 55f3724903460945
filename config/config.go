// Package config holds the process's startup configuration: network
// endpoints, ring capacity, and the optional Kafka audit brokers. There
// is no config file format here — the reference deployment is a single
// binary started with flags, same as the feed it consumes.
package config

import "flag"

// Config is the full set of knobs main.go needs to wire the service.
type Config struct {
	IngressPort      int
	IngressMulticast string // empty means plain unicast

	EgressGroup string
	EgressPort  int
	// EgressTTL is intentionally not a field here: setting multicast TTL
	// needs golang.org/x/net/ipv4's PacketConn, which this deployment does
	// not depend on (see DESIGN.md); a deployment that needs to cross a
	// router sets TTL at the network layer instead.

	RingCapacity uint64

	RefdataDir string

	KafkaBrokers  string // comma-separated; empty disables audit sinks
	TradeTopic    string
	SnapshotTopic string
}

// Default values match the reference deployment's own constants: a
// 16-symbol multicast egress group, a 1<<20 ring (large enough that a
// consumer stall of a few milliseconds never drops a burst), and audit
// sinks off by default since a Kafka cluster is optional infrastructure.
const (
	DefaultIngressPort   = 47500
	DefaultEgressGroup   = "239.10.10.10"
	DefaultEgressPort    = 47600
	DefaultRingCapacity  = 1 << 20
	DefaultRefdataDir    = "./refdata"
	DefaultTradeTopic    = "bookfeed.trades"
	DefaultSnapshotTopic = "bookfeed.snapshots"
)

// Parse builds a Config from command-line flags, falling back to the
// package defaults for anything not passed.
func Parse() Config {
	cfg := Config{}

	flag.IntVar(&cfg.IngressPort, "ingress-port", DefaultIngressPort, "UDP port to receive the ingress feed on")
	flag.StringVar(&cfg.IngressMulticast, "ingress-multicast", "", "ingress multicast group to join (empty for unicast)")
	flag.StringVar(&cfg.EgressGroup, "egress-group", DefaultEgressGroup, "UDP multicast group to publish book updates to")
	flag.IntVar(&cfg.EgressPort, "egress-port", DefaultEgressPort, "UDP port to publish book updates on")
	flag.Uint64Var(&cfg.RingCapacity, "ring-capacity", DefaultRingCapacity, "SPSC ring capacity (rounded up to a power of two)")
	flag.StringVar(&cfg.RefdataDir, "refdata-dir", DefaultRefdataDir, "directory for the embedded reference-data store")
	flag.StringVar(&cfg.KafkaBrokers, "kafka-brokers", "", "comma-separated Kafka broker list; empty disables audit mirroring")
	flag.StringVar(&cfg.TradeTopic, "trade-topic", DefaultTradeTopic, "Kafka topic for trade-print audit records")
	flag.StringVar(&cfg.SnapshotTopic, "snapshot-topic", DefaultSnapshotTopic, "Kafka topic for book-snapshot and heartbeat audit records")

	flag.Parse()
	return cfg
}
