package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
	"github.com/kdduha/chatgateway/internal/logger"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/kdduha/chatgateway/internal/stream"
	"github.com/sirupsen/logrus"
)

var cases = []benchCase{
	{Capability: "chat", Prompt: "Explain the difference between a mutex and a channel in two sentences."},
	{Capability: "web_search", Prompt: "What's the weather in Tokyo today?"},
	{Capability: "image", Prompt: "Generate an image of a red bicycle"},
	{Capability: "video", Prompt: "Create a 5 second video of waves crashing on a beach"},
	{Capability: "tts", Prompt: "[S1] Hi! [S2] Hello back!"},
}

func main() {
	log := logger.New("info")

	var cfg benchConfig
	if err := env.Parse(&cfg); err != nil {
		log.WithError(err).Fatal("parse benchmark config")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	ctx := context.Background()

	var results []BenchResult
	for round := 0; round < cfg.Rounds; round++ {
		for _, c := range cases {
			res := benchmarkCase(ctx, client, cfg, c)
			entry := log.WithFields(logrus.Fields{
				"capability": res.Capability,
				"round":      round,
				"duration":   res.Duration.String(),
			})
			if res.Err != nil {
				entry.WithError(res.Err).Error("request failed")
			} else {
				entry.WithField("markers", res.Markers).Info("request done")
			}
			results = append(results, res)
		}
	}

	printMarkdown(results)
}

func benchmarkCase(ctx context.Context, client *http.Client, cfg benchConfig, c benchCase) BenchResult {
	res := BenchResult{Capability: c.Capability}
	start := time.Now()

	req := models.ChatRequest{
		Model:    cfg.Model,
		Messages: []models.Message{{Role: models.RoleUser, Content: models.Content{Text: c.Prompt}}},
	}

	res.Err = sendStream(ctx, client, cfg.Endpoint, req, func(f stream.Frame) error {
		if res.FirstFrame == 0 {
			res.FirstFrame = time.Since(start)
		}
		switch f.Tag {
		case stream.TagError:
			res.Errors++
		case stream.TagText:
			text, err := f.Text()
			if err != nil {
				return err
			}
			if name, _, ok := stream.ParseMarker(text); ok {
				res.Markers = append(res.Markers, name)
				return nil
			}
			res.Tokens++
		}
		return nil
	})
	res.Duration = time.Since(start)
	return res
}

func sendStream(ctx context.Context, client *http.Client, endpoint string, req models.ChatRequest, onFrame func(stream.Frame) error) error {
	body, err := sonic.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal req: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(b)),
		)
	}

	reader := stream.NewReader(resp.Body)
	finished := false
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if frame.Tag == stream.TagFinish {
			finished = true
		}
		if err := onFrame(frame); err != nil {
			return err
		}
	}

	if !finished {
		return errors.New("stream ended without finish frame")
	}
	return nil
}

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		a := m[r.Capability]
		if r.Err != nil {
			a.Failed++
			m[r.Capability] = a
			continue
		}
		a.Count++
		a.Total += r.Duration
		a.FirstFrame += r.FirstFrame
		a.Tokens += r.Tokens
		m[r.Capability] = a
	}
	return m
}

func printMarkdown(results []BenchResult) {
	fmt.Print("\n## Benchmark Results\n\n")
	fmt.Println("| Capability | Requests | Failed | Avg First Frame | Avg Time | Avg Text Frames |")
	fmt.Println("|------------|----------|--------|-----------------|----------|-----------------|")

	agg := aggregate(results)
	capabilities := make([]string, 0, len(agg))
	for c := range agg {
		capabilities = append(capabilities, c)
	}
	slices.Sort(capabilities)

	var (
		totalCount    int
		totalFailed   int
		totalDuration time.Duration
	)

	for _, c := range capabilities {
		a := agg[c]
		totalFailed += a.Failed
		if a.Count == 0 {
			fmt.Printf("| %s | 0 | %d | - | - | - |\n", c, a.Failed)
			continue
		}
		n := time.Duration(a.Count)
		fmt.Printf("| %s | %d | %d | %v | %v | %d |\n",
			c,
			a.Count,
			a.Failed,
			(a.FirstFrame / n).Round(time.Millisecond),
			(a.Total / n).Round(time.Millisecond),
			a.Tokens/a.Count,
		)
		totalCount += a.Count
		totalDuration += a.Total
	}

	if totalCount > 0 {
		fmt.Printf("| **ALL** | %d | %d | - | %v | - |\n",
			totalCount,
			totalFailed,
			(totalDuration / time.Duration(totalCount)).Round(time.Millisecond),
		)
	}
}
