// Command worker subscribes to batch requests published by cmd/farm/client,
// runs core.RunStepLoop for its assigned step range, and publishes the
// resulting pixel count to the reduce subject.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"

	"github.com/nats-io/nats.go"

	"rootfield/core"
)

// BatchRequest must match the type published by cmd/farm/client.
type BatchRequest struct {
	ChunkID    int       `json:"chunkId"`
	StepStart  int       `json:"stepStart"`
	StepEnd    int       `json:"stepEnd"`
	Degree     int       `json:"degree"`
	ColorMode  int       `json:"colorMode"`
	CanvasW    int       `json:"canvasW"`
	CanvasH    int       `json:"canvasH"`
	TotalSteps int       `json:"totalSteps"`
	Range      float64   `json:"range"`
	FPS        float64   `json:"fps"`
	Seed       [4]uint32 `json:"seed"`
}

// BatchResult must match the type consumed by cmd/farm/reducer.
type BatchResult struct {
	ChunkID    int `json:"chunkId"`
	PixelCount int `json:"pixelCount"`
}

func runChunk(req BatchRequest) (int, error) {
	nc, nr := req.Degree+1, req.Degree
	cfg := core.Config{
		NCoeffs:       nc,
		NRoots:        nr,
		CanvasW:       req.CanvasW,
		CanvasH:       req.CanvasH,
		TotalSteps:    req.TotalSteps,
		ColorMode:     core.ColorMode(req.ColorMode),
		MatchStrategy: core.MatchAssign4,
		Range:         req.Range,
		FPS:           req.FPS,
		Seed:          req.Seed,
	}
	steps := req.StepEnd - req.StepStart
	buf := &core.Buffers{
		CoeffsRe:     make([]float64, nc),
		CoeffsIm:     make([]float64, nc),
		ColorsR:      make([]byte, nr),
		ColorsG:      make([]byte, nr),
		ColorsB:      make([]byte, nr),
		JiggleRe:     make([]float64, nc),
		JiggleIm:     make([]float64, nc),
		WorkCoeffsRe: make([]float64, nc),
		WorkCoeffsIm: make([]float64, nc),
		RootsRe:      make([]float64, nr),
		RootsIm:      make([]float64, nr),
		ScratchRe:    make([]float64, nr),
		ScratchIm:    make([]float64, nr),
		PaintIdx:     make([]int, nr*steps),
		PaintR:       make([]byte, nr*steps),
		PaintG:       make([]byte, nr*steps),
		PaintB:       make([]byte, nr*steps),
	}
	buf.CoeffsRe[0] = 1
	buf.CoeffsRe[nc-1] = -1
	for i := 0; i < nr; i++ {
		theta := 2 * math.Pi * float64(i) / float64(nr)
		buf.RootsRe[i] = math.Cos(theta)
		buf.RootsIm[i] = math.Sin(theta)
	}

	c, err := core.Bind(cfg, buf)
	if err != nil {
		return 0, err
	}
	elapsedOffset := (float64(req.StepStart) / float64(req.TotalSteps)) * req.FPS
	pc := c.RunStepLoop(nil, req.StepStart, req.StepEnd, elapsedOffset)
	return pc, nil
}

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	subject := flag.String("subject", "rootfield.batch.request", "subject to subscribe for batch requests")
	reduceSubject := flag.String("reduceSubject", "rootfield.batch.reduce", "subject to publish chunk results")
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("error connecting to NATS: %v", err)
	}
	defer nc.Close()
	log.Printf("worker connected to NATS at %s", *natsURL)

	_, err = nc.QueueSubscribe(*subject, "workers", func(msg *nats.Msg) {
		var req BatchRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Printf("error unmarshalling request: %v", err)
			return
		}

		pixelCount, err := runChunk(req)
		if err != nil {
			log.Printf("error running chunk %d: %v", req.ChunkID, err)
			return
		}

		resp := BatchResult{ChunkID: req.ChunkID, PixelCount: pixelCount}
		respData, err := json.Marshal(resp)
		if err != nil {
			log.Printf("error marshalling response: %v", err)
			return
		}

		if err := nc.Publish(*reduceSubject, respData); err != nil {
			log.Printf("error publishing chunk %d result: %v", req.ChunkID, err)
			return
		}
		log.Printf("published chunk %d result: %d pixels", req.ChunkID, pixelCount)
	})
	if err != nil {
		log.Fatalf("error subscribing to subject: %v", err)
	}

	select {}
}
