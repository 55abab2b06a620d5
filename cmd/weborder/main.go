// weborder reads web-dialect order lines from the console and publishes the
// accepted ones to the orders queue.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"divesurf/internal/broker"
	"divesurf/internal/normalize"
)

func main() {
	var (
		bootstrap string
		topic     string
	)
	flag.StringVar(&bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&topic, "topic", "orders", "raw orders queue")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	pub := broker.NewKafkaPublisher(bootstrap, topic)
	defer pub.Close()

	fmt.Println("Enter orders in format: <Customer-ID,First Name,Last Name,Diving suits,Surfboards>")
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
		if _, err := normalize.Parse(line); err != nil || normalize.Classify(line) != normalize.DialectWeb {
			fmt.Println("Error: Invalid input. Please use the format: Customer-ID,First Name,Last Name,Diving suits,Surfboards")
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
