package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fenrir/domain/orderbook"
	"fenrir/infra/kafka"
	"fenrir/infra/logging"
	"fenrir/infra/outbox"
	"fenrir/jobs/broadcaster"
	"fenrir/params"
	"fenrir/service"
	"fenrir/sink"
)

func main() {
	cfg := params.LoadFromEnv("")

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = log.Sync() }()

	// ---------------- Sinks ----------------

	fileLog, err := sink.NewFileLog(cfg.TradeLog)
	if err != nil {
		log.Fatal("trade log init failed", zap.Error(err))
	}
	sinks := []sink.Sink{fileLog}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		box *outbox.Outbox
		bc  *broadcaster.Broadcaster
	)
	if cfg.KafkaEnabled() {
		box, err = outbox.Open(cfg.Kafka.OutboxDir)
		if err != nil {
			log.Fatal("outbox init failed", zap.Error(err))
		}

		feed := sink.NewFeed(kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.FeedTopic), 0)
		sinks = append(sinks, sink.NewOutbox(box), feed)

		bc, err = broadcaster.New(box, cfg.Kafka.Brokers, cfg.Kafka.EventTopic, cfg.Kafka.BroadcastInterval, log)
		if err != nil {
			log.Fatal("broadcaster init failed", zap.Error(err))
		}
		go bc.Run(ctx)
	}

	// ---------------- Engine ----------------

	svc := service.NewOrderService(log, sinks...)

	log.Info("fenrir engine running",
		zap.String("trade_log", cfg.TradeLog),
		zap.Bool("kafka", cfg.KafkaEnabled()),
	)

	if cfg.DemoFeed {
		feedDemoOrders(svc, log)
	}

	// ---------------- Shutdown ----------------

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	svc.Close()
	if bc != nil {
		_ = bc.Close()
	}
	if box != nil {
		_ = box.Close()
	}

	bids, asks := svc.Book().Depth()
	log.Info("engine stopped",
		zap.Int("resting_bids", bids),
		zap.Int("resting_asks", asks),
	)
}

// feedDemoOrders submits the fixed demonstration sequence.
func feedDemoOrders(svc *service.OrderService, log *zap.Logger) {
	demo := []struct {
		qty   int64
		price float64
		side  orderbook.Side
	}{
		{100, 185.50, orderbook.Bid},
		{50, 185.40, orderbook.Ask},
		{150, 185.60, orderbook.Bid},
		{100, 185.50, orderbook.Ask},
	}

	for _, d := range demo {
		if _, err := svc.PlaceOrder("AAPL", d.qty, d.price, d.side); err != nil {
			log.Warn("demo order rejected", zap.Error(err))
		}
	}
	log.Info("demo orders submitted", zap.Int("count", len(demo)))
}
