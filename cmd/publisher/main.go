// The publisher consumes raw order lines from the orders queue, normalizes
// and enriches them, and publishes the enriched orders to the fan-out topic
// consumed by both validators. The consume-transform-produce step is a Kafka
// transaction, so each consumed line yields at most one enriched order with
// one order id even across restarts mid-batch.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"time"

	ck "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"divesurf/internal/enrich"
	"divesurf/internal/metrics"
	"divesurf/internal/normalize"
)

type config struct {
	Bootstrap   string
	GroupID     string
	TopicIn     string
	TopicOut    string
	TxID        string
	MetricsAddr string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.Bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&cfg.GroupID, "group-id", "publisher", "consumer group id")
	flag.StringVar(&cfg.TopicIn, "topic-in", "orders", "raw orders queue")
	flag.StringVar(&cfg.TopicOut, "topic-out", "orders.enriched", "enriched orders topic")
	flag.StringVar(&cfg.TxID, "tx-id", "order-publisher-1", "transactional id")
	flag.StringVar(&cfg.MetricsAddr, "metrics", ":8081", "metrics/health listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("publisher failed", zap.Error(err))
	}
}

func run(cfg config, logger *zap.Logger) error {
	mreg := metrics.NewRegistry()
	go func() {
		if err := mreg.Serve(cfg.MetricsAddr); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	p, err := ck.NewProducer(&ck.ConfigMap{
		"bootstrap.servers":  cfg.Bootstrap,
		"enable.idempotence": true,
		"acks":               "all",
		"transactional.id":   cfg.TxID,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	c, err := ck.NewConsumer(&ck.ConfigMap{
		"bootstrap.servers":  cfg.Bootstrap,
		"group.id":           cfg.GroupID,
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
		"auto.offset.reset":  "earliest",
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{cfg.TopicIn}, nil); err != nil {
		return err
	}
	if err := p.InitTransactions(context.TODO()); err != nil {
		return err
	}

	seq := enrich.NewSequence()
	logger.Info("publisher started",
		zap.String("bootstrap", cfg.Bootstrap),
		zap.String("in", cfg.TopicIn),
		zap.String("out", cfg.TopicOut))

	for {
		msg, err := c.ReadMessage(10 * time.Second)
		if err != nil {
			continue
		}

		line := string(msg.Value)
		order, perr := normalize.Parse(line)

		if err := p.BeginTransaction(); err != nil {
			return err
		}

		if perr != nil {
			// Malformed input: report, drop the order, still advance the
			// offset so the line is not reprocessed forever.
			var malformed *normalize.MalformedInputError
			if errors.As(perr, &malformed) {
				logger.Warn("dropping malformed order", zap.String("line", malformed.Line), zap.String("reason", malformed.Reason))
			} else {
				logger.Warn("dropping unparseable order", zap.Error(perr))
			}
			mreg.OrdersMalformed.Inc()
		} else {
			enriched := enrich.Enrich(seq, order)
			val, _ := json.Marshal(&enriched)
			key := []byte(enriched.CustomerID)
			if err := p.Produce(&ck.Message{
				TopicPartition: ck.TopicPartition{Topic: &cfg.TopicOut, Partition: ck.PartitionAny},
				Key:            key,
				Value:          val,
			}, nil); err != nil {
				logger.Error("produce enriched order", zap.Error(err))
				_ = p.AbortTransaction(context.TODO())
				continue
			}
			mreg.OrdersNormalized.Inc()
			logger.Info("order enriched",
				zap.Uint64("orderId", enriched.OrderID),
				zap.String("customerId", enriched.CustomerID),
				zap.Uint("overallItems", enriched.OverallItems))
		}

		// Bind the consumed offset to the transaction so the line is
		// consumed exactly when its enriched order is published.
		offsets, _ := c.Commit()
		meta, _ := c.GetConsumerGroupMetadata()
		if err := p.SendOffsetsToTransaction(context.Background(), offsets, meta); err != nil {
			logger.Error("send offsets", zap.Error(err))
			_ = p.AbortTransaction(context.TODO())
			continue
		}
		_ = p.Flush(5000)
		if err := p.CommitTransaction(context.TODO()); err != nil {
			logger.Error("commit transaction", zap.Error(err))
			_ = p.AbortTransaction(context.TODO())
		}
	}
}
