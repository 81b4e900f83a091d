// Command client divides an animation run into step-range batches and
// distributes them to rootfield farm workers over NATS, waiting for the
// reducer's aggregated result. Each worker solves its own chunk
// independently of the others, so root identity is not preserved across
// chunk boundaries — this tool is for throughput, not mid-animation
// continuity.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// BatchRequest asks a worker to run RunStepLoop over [StepStart, StepEnd)
// for a fixed z^Degree - 1 polynomial, colored by ColorMode.
type BatchRequest struct {
	ChunkID    int     `json:"chunkId"`
	StepStart  int     `json:"stepStart"`
	StepEnd    int     `json:"stepEnd"`
	Degree     int     `json:"degree"`
	ColorMode  int     `json:"colorMode"`
	CanvasW    int     `json:"canvasW"`
	CanvasH    int     `json:"canvasH"`
	TotalSteps int     `json:"totalSteps"`
	Range      float64 `json:"range"`
	FPS        float64 `json:"fps"`
	Seed       [4]uint32 `json:"seed"`
}

// BatchResult is the pixel count a worker produced for its chunk.
type BatchResult struct {
	ChunkID     int `json:"chunkId"`
	PixelCount  int `json:"pixelCount"`
}

// FinalResult is the reducer's aggregate across every chunk.
type FinalResult struct {
	TotalPixels int `json:"totalPixels"`
	ChunkCount  int `json:"chunkCount"`
}

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	subject := flag.String("subject", "rootfield.batch.request", "subject to publish batch requests")
	finalSubject := flag.String("finalSubject", "rootfield.batch.final", "subject for the reducer's final result")
	degree := flag.Int("degree", 6, "polynomial degree (z^degree - 1)")
	totalSteps := flag.Int("steps", 2000, "total animation steps to distribute")
	chunkSize := flag.Int("chunk", 200, "steps per chunk")
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("error connecting to NATS: %v", err)
	}
	defer nc.Close()
	log.Printf("client connected to NATS at %s", *natsURL)

	finalSub, err := nc.SubscribeSync(*finalSubject)
	if err != nil {
		log.Fatalf("error subscribing to final subject: %v", err)
	}
	defer finalSub.Unsubscribe()

	chunkID := 0
	for start := 0; start < *totalSteps; start += *chunkSize {
		end := start + *chunkSize
		if end > *totalSteps {
			end = *totalSteps
		}

		req := BatchRequest{
			ChunkID:    chunkID,
			StepStart:  start,
			StepEnd:    end,
			Degree:     *degree,
			CanvasW:    800,
			CanvasH:    800,
			TotalSteps: *totalSteps,
			Range:      2.0,
			FPS:        1.0,
			Seed:       [4]uint32{1, 2, 3, 4},
		}
		data, err := json.Marshal(req)
		if err != nil {
			log.Fatalf("error marshalling request: %v", err)
		}

		if err := nc.Publish(*subject, data); err != nil {
			log.Fatalf("error publishing chunk %d: %v", chunkID, err)
		}
		log.Printf("published batch chunk %d: steps [%d,%d)", chunkID, start, end)
		chunkID++
	}

	msg, err := finalSub.NextMsg(30 * time.Second)
	if err != nil {
		log.Fatalf("error waiting for final result: %v", err)
	}

	var final FinalResult
	if err := json.Unmarshal(msg.Data, &final); err != nil {
		log.Fatalf("error unmarshalling final result: %v", err)
	}
	log.Printf("final result: %d pixels across %d chunks", final.TotalPixels, final.ChunkCount)
}
