// The results service joins the two partial results of each order into one
// aggregated record, routes it by size class to the final queues and prints
// the order report. An order whose second validation never arrives within the
// join timeout is emitted invalid with the missing side named.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/correlate"
	"divesurf/internal/metrics"
	"divesurf/internal/model"
	"divesurf/internal/route"
)

type config struct {
	Bootstrap   string
	TopicIn     string
	Group       string
	TopicLarge  string
	TopicSmall  string
	TopicErrors string
	JoinTimeout time.Duration
	MetricsAddr string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.Bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&cfg.TopicIn, "topic-in", "results.partial", "partial results queue")
	flag.StringVar(&cfg.Group, "group-id", "results", "consumer group id")
	flag.StringVar(&cfg.TopicLarge, "topic-large", "orders.large", "large orders queue")
	flag.StringVar(&cfg.TopicSmall, "topic-small", "orders.small", "small orders queue")
	flag.StringVar(&cfg.TopicErrors, "topic-errors", "orders.unroutable", "error sink queue")
	flag.DurationVar(&cfg.JoinTimeout, "join-timeout", correlate.DefaultTimeout, "wait for the second partial result")
	flag.StringVar(&cfg.MetricsAddr, "metrics", ":8084", "metrics/health listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("results failed", zap.Error(err))
	}
}

func run(cfg config, logger *zap.Logger) error {
	mreg := metrics.NewRegistry()
	go func() {
		if err := mreg.Serve(cfg.MetricsAddr); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub := broker.NewKafkaSubscriber(cfg.Bootstrap, cfg.TopicIn, cfg.Group)
	defer sub.Close()
	large := broker.NewKafkaPublisher(cfg.Bootstrap, cfg.TopicLarge)
	defer large.Close()
	small := broker.NewKafkaPublisher(cfg.Bootstrap, cfg.TopicSmall)
	defer small.Close()
	errSink := broker.NewKafkaPublisher(cfg.Bootstrap, cfg.TopicErrors)
	defer errSink.Close()

	router := route.NewRouter(large, small, errSink, logger, mreg)

	emit := func(agg model.AggregatedResult) {
		agg.SizeClass = string(route.Classify(agg.OverallItems))
		printReport(agg)
		b, err := json.Marshal(&agg)
		if err != nil {
			logger.Error("marshal aggregated result", zap.Error(err))
			return
		}
		if err := router.Route(ctx, b); err != nil {
			logger.Error("route aggregated result",
				zap.Uint64("orderId", agg.OrderID), zap.Error(err))
		}
	}

	corr := correlate.New(cfg.JoinTimeout, emit, logger, mreg)
	defer corr.Close()

	logger.Info("results started",
		zap.String("topic", cfg.TopicIn),
		zap.Duration("joinTimeout", cfg.JoinTimeout))

	for {
		msg, err := sub.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("fetch partial result", zap.Error(err))
			continue
		}

		var pr model.PartialResult
		if err := json.Unmarshal(msg.Value, &pr); err != nil {
			logger.Warn("skipping undecodable partial result", zap.Error(err))
			_ = sub.Commit(ctx, msg)
			continue
		}

		corr.Offer(pr)
		if err := sub.Commit(ctx, msg); err != nil {
			logger.Error("commit offset", zap.Error(err))
		}
	}

	logger.Info("results stopped")
	return nil
}
