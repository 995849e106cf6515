package main

import (
	"time"

	"github.com/kdduha/chatgateway/internal/stream"
)

type benchConfig struct {
	Endpoint string        `env:"BENCH_ENDPOINT" envDefault:"http://localhost:8080/api/chat"`
	Model    string        `env:"BENCH_MODEL" envDefault:"gemini-2.0-flash"`
	Rounds   int           `env:"BENCH_ROUNDS" envDefault:"3"`
	Timeout  time.Duration `env:"BENCH_TIMEOUT" envDefault:"5m"`
}

type benchCase struct {
	Capability string
	Prompt     string
}

type BenchResult struct {
	Capability string
	FirstFrame time.Duration
	Duration   time.Duration
	Tokens     int
	Markers    []stream.MarkerName
	Errors     int
	Err        error
}

type Agg struct {
	Count      int
	Failed     int
	Total      time.Duration
	FirstFrame time.Duration
	Tokens     int
}
