// The billing service is one of the two independent validators: it consumes
// every enriched order through its own durable group, scores the customer's
// credit and publishes the credit-side partial result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/credit"
	"divesurf/internal/metrics"
	"divesurf/internal/model"
)

func main() {
	var (
		bootstrap    string
		topicIn      string
		group        string
		topicResults string
		metricsAddr  string
	)
	flag.StringVar(&bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&topicIn, "topic-in", "orders.enriched", "enriched orders topic")
	flag.StringVar(&group, "group-id", "billing", "durable subscription group")
	flag.StringVar(&topicResults, "topic-results", "results.partial", "partial results queue")
	flag.StringVar(&metricsAddr, "metrics", ":8082", "metrics/health listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	mreg := metrics.NewRegistry()
	go func() {
		if err := mreg.Serve(metricsAddr); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub := broker.NewKafkaSubscriber(bootstrap, topicIn, group)
	defer sub.Close()
	pub := broker.NewKafkaPublisher(bootstrap, topicResults)
	defer pub.Close()

	logger.Info("billing started", zap.String("topic", topicIn), zap.String("group", group))

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

		pr := credit.Validate(order)
		if pr.Valid {
			mreg.CreditApproved.Inc()
		} else {
			mreg.CreditRejected.Inc()
		}

		b, _ := json.Marshal(&pr)
		if err := pub.Publish(ctx, orderKey(pr.OrderID), b); err != nil {
			// Not committed: the order is redelivered rather than lost.
			logger.Error("publish credit result", zap.Error(err))
			continue
		}
		if err := sub.Commit(ctx, msg); err != nil {
			logger.Error("commit offset", zap.Error(err))
		}

		logger.Info("credit validated",
			zap.Uint64("orderId", pr.OrderID),
			zap.Bool("valid", pr.Valid),
			zap.Uint("creditScore", pr.CreditScore))
	}

	logger.Info("billing stopped")
}

func orderKey(id uint64) []byte { return []byte(strconv.FormatUint(id, 10)) }
