package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"bookfeed/config"
	"bookfeed/infra/netfeed"
	"bookfeed/infra/publisher"
	"bookfeed/infra/refdata"
	"bookfeed/infra/ring"
	"bookfeed/jobs/heartbeat"
	"bookfeed/service"
)

func main() {
	cfg := config.Parse()

	// ---------------- Reference data ----------------

	refStore, err := refdata.Open(cfg.RefdataDir)
	if err != nil {
		log.Fatalf("refdata init failed: %v", err)
	}
	defer refStore.Close()

	// ---------------- Ingress ----------------

	var listener *netfeed.Listener
	if cfg.IngressMulticast != "" {
		listener, err = netfeed.ListenMulticast(cfg.IngressMulticast, cfg.IngressPort)
	} else {
		listener, err = netfeed.Listen(cfg.IngressPort)
	}
	if err != nil {
		log.Fatalf("ingress listen failed: %v", err)
	}
	defer listener.Close()

	// ---------------- Egress ----------------

	pub, err := publisher.NewMulticastPublisher(cfg.EgressGroup, cfg.EgressPort)
	if err != nil {
		log.Fatalf("egress dial failed: %v", err)
	}
	defer pub.Close()

	// ---------------- Kafka audit sinks (optional) ----------------

	var trades *publisher.TradeAuditSink
	var snaps *publisher.SnapshotAuditSink
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")

		trades, err = publisher.NewTradeAuditSink(brokers, cfg.TradeTopic)
		if err != nil {
			log.Fatalf("trade audit sink init failed: %v", err)
		}
		defer trades.Close()

		snaps = publisher.NewSnapshotAuditSink(brokers, cfg.SnapshotTopic)
		defer snaps.Close()
	}

	// ---------------- Ring + service loops ----------------

	r := ring.New(cfg.RingCapacity)
	counters := &service.Counters{}

	hb := heartbeat.New()

	in := service.NewIngest(listener, r, counters)
	consumer := service.NewConsumer(r, refStore, pub, trades, snaps, counters, hb.C)

	// ---------------- Shutdown flag ----------------

	var shuttingDown atomic.Bool
	shutdown := func() bool { return shuttingDown.Load() }

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received, draining")
		shuttingDown.Store(true)
	}()

	// ---------------- Background jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hb.Start(ctx)

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reportCounters(counters)
			}
		}
	}()

	// ---------------- Run ----------------

	go func() {
		if err := in.Run(shutdown); err != nil {
			log.Printf("ingest loop exited: %v", err)
			shuttingDown.Store(true)
		}
	}()

	log.Printf("bookfeed listening on :%d, publishing to %s:%d", cfg.IngressPort, cfg.EgressGroup, cfg.EgressPort)
	consumer.Run(shutdown)

	cancel()
	log.Println("shutdown complete")
}

func reportCounters(c *service.Counters) {
	log.Printf(
		"packets=%d parse_errors=%d enqueued=%d dropped=%d applied=%d "+
			"dup_order_errors=%d unknown_order_errors=%d unknown_side_errors=%d "+
			"publish_errors=%d tick_mismatches=%d",
		c.PacketsReceived.Load(),
		c.ParseErrors.Load(),
		c.EventsEnqueued.Load(),
		c.EventsDropped.Load(),
		c.EventsApplied.Load(),
		c.DuplicateOrderErrors.Load(),
		c.UnknownOrderErrors.Load(),
		c.UnknownSideErrors.Load(),
		c.PublishErrors.Load(),
		c.TickMismatches.Load(),
	)
	log.Printf(
		"latency_ns avg exchange_to_udp=%d udp_to_enqueue=%d enqueue_to_dequeue=%d total=%d (samples=%d)",
		meanLatency(c.LatencyExchangeToUDPNS.Load(), c.LatencySamples.Load()),
		meanLatency(c.LatencyUDPToEnqueueNS.Load(), c.LatencySamples.Load()),
		meanLatency(c.LatencyEnqueueToDequeueNS.Load(), c.LatencySamples.Load()),
		meanLatency(c.LatencyTotalNS.Load(), c.LatencySamples.Load()),
		c.LatencySamples.Load(),
	)
}

func meanLatency(sumNS, samples uint64) uint64 {
	if samples == 0 {
		return 0
	}
	return sumNS / samples
}
