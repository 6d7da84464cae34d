package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harris-mohamed/sensorsync"
)

// Runs one tick with a channel writer so rows can be inspected or forwarded
// instead of landing in the warehouse.
func main() {
	cfg, err := sensorsync.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	writer, batches, closeBatches := sensorsync.NewChannelWriter("fanout", 32)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fanoutWorker("inspect", batches)
	}()

	rt, err := sensorsync.NewRuntime(ctx, cfg, sensorsync.WithWriter(writer))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	report, err := rt.Tick(ctx)
	closeBatches()
	<-done
	if err != nil {
		log.Printf("tick finished with failures: %v", err)
	}
	log.Printf("tick took %s, %d endpoints synced", report.Duration, len(report.Results))
}

func fanoutWorker(name string, batches <-chan sensorsync.Batch) {
	for batch := range batches {
		fmt.Printf("[%s] %d rows for %s at %s\n", name, len(batch.Rows), batch.Table, time.Now().Format(time.RFC3339))
	}
}
