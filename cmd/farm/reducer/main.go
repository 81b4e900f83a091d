// Command reducer collects per-chunk pixel counts published by
// cmd/farm/worker and publishes their sum once every expected chunk has
// reported in.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// BatchResult must match the type published by cmd/farm/worker.
type BatchResult struct {
	ChunkID    int `json:"chunkId"`
	PixelCount int `json:"pixelCount"`
}

// FinalResult must match the type consumed by cmd/farm/client.
type FinalResult struct {
	TotalPixels int `json:"totalPixels"`
	ChunkCount  int `json:"chunkCount"`
}

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	reduceSubject := flag.String("reduceSubject", "rootfield.batch.reduce", "subject to subscribe for chunk results")
	finalSubject := flag.String("finalSubject", "rootfield.batch.final", "subject for the final aggregated result")
	expectedChunks := flag.Int("expect", 10, "number of chunk results to wait for before publishing the final result")
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("error connecting to NATS: %v", err)
	}
	defer nc.Close()
	log.Printf("reducer connected to NATS at %s", *natsURL)

	var totalPixels int
	var chunksSeen int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(*expectedChunks)

	_, err = nc.Subscribe(*reduceSubject, func(msg *nats.Msg) {
		var resp BatchResult
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			log.Printf("error unmarshalling chunk result: %v", err)
			return
		}

		mu.Lock()
		totalPixels += resp.PixelCount
		chunksSeen++
		mu.Unlock()

		log.Printf("received chunk %d: %d pixels", resp.ChunkID, resp.PixelCount)
		wg.Done()
	})
	if err != nil {
		log.Fatalf("error subscribing to reduce subject: %v", err)
	}

	wg.Wait()

	final := FinalResult{TotalPixels: totalPixels, ChunkCount: chunksSeen}
	data, err := json.Marshal(final)
	if err != nil {
		log.Fatalf("error marshalling final result: %v", err)
	}

	if err := nc.Publish(*finalSubject, data); err != nil {
		log.Fatalf("error publishing final result: %v", err)
	}
	log.Printf("published final result: %d pixels across %d chunks", totalPixels, chunksSeen)
}
