// genorders writes random raw order lines, mixing both input dialects, for
// feeding the pipeline in load and recovery experiments.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

var (
	firstNames = []string{"Jane", "John", "Maria", "Liam", "Aisha", "Tom"}
	lastNames  = []string{"Doe", "Smith", "Garcia", "Nguyen", "Khan", "Meyer"}
)

func main() {
	var count int
	var outputFile string
	flag.IntVar(&count, "count", 100, "number of orders to generate")
	flag.StringVar(&outputFile, "output", "orders.txt", "output file")
	flag.Parse()

	if err := generateOrders(count, outputFile); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func generateOrders(count int, outputFile string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < count; i++ {
		first := firstNames[r.Intn(len(firstNames))]
		last := lastNames[r.Intn(len(lastNames))]
		suits := r.Intn(8)
		boards := r.Intn(8)
		var line string
		if r.Intn(2) == 0 {
			// web dialect: numeric customer id first
			line = fmt.Sprintf("%d,%s,%s,%d,%d", 1000+r.Intn(9000), first, last, suits, boards)
		} else {
			// call-center dialect: full name first, alphanumeric customer id last
			line = fmt.Sprintf("%s %s,%d,%d,C-%d", first, last, boards, suits, 1000+r.Intn(9000))
		}
		if _, err := fmt.Fprintln(file, line); err != nil {
			return fmt.Errorf("write order %d: %w", i+1, err)
		}
	}

	log.Printf("generated %d orders to %s", count, outputFile)
	return nil
}
