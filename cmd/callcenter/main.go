// callcenter reads call-center-dialect order lines from the console and
// publishes the accepted ones to the orders queue. Accepted lines are also
// appended in batches to a local log file, the call center's own record of
// what it took in.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/normalize"
	"divesurf/internal/orderlog"
)

func main() {
	var (
		bootstrap     string
		topic         string
		logDir        string
		logFile       string
		flushInterval time.Duration
	)
	flag.StringVar(&bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&topic, "topic", "orders", "raw orders queue")
	flag.StringVar(&logDir, "log-dir", "./orders", "order log directory")
	flag.StringVar(&logFile, "log-file", "callcenter_orders_log.txt", "order log file name")
	flag.DurationVar(&flushInterval, "log-flush", 2*time.Minute, "order log flush interval")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	olog, err := orderlog.New(logDir, logFile, flushInterval)
	if err != nil {
		logger.Fatal("open order log", zap.Error(err))
	}
	defer func() {
		if err := olog.Close(); err != nil {
			logger.Error("flush order log", zap.Error(err))
		}
	}()

	kafkaPub := broker.NewKafkaPublisher(bootstrap, topic)
	defer kafkaPub.Close()
	pub := broker.NewMultiPublisher(kafkaPub, olog)

	fmt.Println("Enter orders in format: <Full Name,Surfboards,Diving Suits,Customer-ID>")
	fmt.Println("Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Order: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "exit") {
			break
		}
		if line == "" {
			continue
		}
		if _, err := normalize.Parse(line); err != nil || normalize.Classify(line) != normalize.DialectCallCenter {
			fmt.Println("Error: Invalid input. Please use the format: Full Name,Surfboards,Diving Suits,Customer-ID")
			continue
		}
		if err := pub.Publish(context.Background(), nil, []byte(line)); err != nil {
			logger.Error("publish order", zap.Error(err))
			fmt.Println("Error: order could not be sent, please retry.")
			continue
		}
		logger.Info("order sent", zap.String("line", line))
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read input", zap.Error(err))
	}
}
