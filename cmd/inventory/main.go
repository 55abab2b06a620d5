// The inventory service is the stock-side validator: it consumes every
// enriched order through its own durable group, runs the atomic
// check-and-decrement against the stock ledger and publishes the stock-side
// partial result. The ledger backend is selected by flag; pebble and badger
// persist every mutation before it takes effect.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/inventory"
	"divesurf/internal/ledger"
	"divesurf/internal/metrics"
	"divesurf/internal/model"
)

type config struct {
	Bootstrap    string
	TopicIn      string
	Group        string
	TopicResults string
	StateBackend string // memory|pebble|badger
	DataDir      string
	MetricsAddr  string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.Bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&cfg.TopicIn, "topic-in", "orders.enriched", "enriched orders topic")
	flag.StringVar(&cfg.Group, "group-id", "inventory", "durable subscription group")
	flag.StringVar(&cfg.TopicResults, "topic-results", "results.partial", "partial results queue")
	flag.StringVar(&cfg.StateBackend, "state-backend", "pebble", "stock store: memory|pebble|badger")
	flag.StringVar(&cfg.DataDir, "data-dir", "./data/inventory", "stock store directory")
	flag.StringVar(&cfg.MetricsAddr, "metrics", ":8083", "metrics/health listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("inventory failed", zap.Error(err))
	}
}

func openStore(cfg config) (ledger.Store, func() error, error) {
	switch cfg.StateBackend {
	case "memory":
		return ledger.NewMemoryStore(), func() error { return nil }, nil
	case "pebble":
		ps, err := ledger.NewPebbleStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	case "badger":
		bs, err := ledger.NewBadgerStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

func run(cfg config, logger *zap.Logger) error {
	mreg := metrics.NewRegistry()
	go func() {
		if err := mreg.Serve(cfg.MetricsAddr); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("init %s store: %w", cfg.StateBackend, err)
	}
	defer func() { _ = closeStore() }()

	lg, err := ledger.Open(store)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	levels := lg.Levels()
	logger.Info("inventory started",
		zap.String("backend", cfg.StateBackend),
		zap.Int("divingSuits", levels.DivingSuits),
		zap.Int("surfboards", levels.Surfboards))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub := broker.NewKafkaSubscriber(cfg.Bootstrap, cfg.TopicIn, cfg.Group)
	defer sub.Close()
	pub := broker.NewKafkaPublisher(cfg.Bootstrap, cfg.TopicResults)
	defer pub.Close()

	for {
		msg, err := sub.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("fetch enriched order", zap.Error(err))
			continue
		}

		var order model.EnrichedOrder
		if err := json.Unmarshal(msg.Value, &order); err != nil {
			logger.Warn("skipping undecodable enriched order", zap.Error(err))
			_ = sub.Commit(ctx, msg)
			continue
		}

		pr, verr := inventory.Validate(lg, order)
		switch {
		case verr != nil:
			// Durable write failed: the order is rejected and the ledger
			// did not advance. Surface it loudly.
			logger.Error("stock persistence failed, order rejected",
				zap.Uint64("orderId", order.OrderID), zap.Error(verr))
			mreg.StockPersistFailed.Inc()
		case pr.Valid:
			mreg.StockApproved.Inc()
		default:
			mreg.StockRejected.Inc()
		}

		b, _ := json.Marshal(&pr)
		if err := pub.Publish(ctx, orderKey(pr.OrderID), b); err != nil {
			logger.Error("publish stock result", zap.Error(err))
			continue
		}
		if err := sub.Commit(ctx, msg); err != nil {
			logger.Error("commit offset", zap.Error(err))
		}

		after := lg.Levels()
		logger.Info("stock validated",
			zap.Uint64("orderId", pr.OrderID),
			zap.Bool("valid", pr.Valid),
			zap.Int("divingSuits", after.DivingSuits),
			zap.Int("surfboards", after.Surfboards),
			zap.Int("totalStock", after.Total()))
	}

	logger.Info("inventory stopped")
	return nil
}

func orderKey(id uint64) []byte { return []byte(strconv.FormatUint(id, 10)) }
