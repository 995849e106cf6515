package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server      ServerConfig
	Chat        ChatConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	Search      SearchConfig
	Generator   GeneratorConfig
	RedisConfig RedisConfig
	Log         LogConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"10m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
	MaxBodyBytes    int64         `env:"SERVER_MAX_BODY_BYTES" envDefault:"20971520"`
}

type ChatConfig struct {
	DefaultModel string `env:"CHAT_DEFAULT_MODEL" envDefault:"gemini-2.0-flash"`
	// Models that perform their own retrieval; web search detection is skipped for them.
	BuiltinSearchModels []string      `env:"CHAT_BUILTIN_SEARCH_MODELS" envSeparator:"," envDefault:"Claude Sonnet 4"`
	Timeout             time.Duration `env:"CHAT_TIMEOUT" envDefault:"5m"`
}

type GeminiConfig struct {
	APIKey string   `env:"GEMINI_API_KEY"`
	Models []string `env:"GEMINI_MODELS" envSeparator:"," envDefault:"gemini-2.0-flash,gemini-2.5-flash-preview-05-20,gemini-2.5-pro-preview-06-05"`
}

type OpenAIConfig struct {
	APIKey  string   `env:"OPENAI_API_KEY"`
	BaseURL string   `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Models  []string `env:"OPENAI_CHAT_MODELS" envSeparator:"," envDefault:"gpt-4o,gpt-4o-mini,gpt-4.1"`
}

type SearchConfig struct {
	APIKey           string        `env:"PERPLEXITY_API_KEY"`
	BaseURL          string        `env:"PERPLEXITY_BASE_URL" envDefault:"https://api.perplexity.ai"`
	Model            string        `env:"PERPLEXITY_MODEL" envDefault:"sonar-pro"`
	Timeout          time.Duration `env:"SEARCH_TIMEOUT" envDefault:"30s"`
	MaxRetries       int           `env:"SEARCH_MAX_RETRIES" envDefault:"2"`
	CacheTTLWeb      time.Duration `env:"SEARCH_CACHE_TTL_WEB" envDefault:"5m"`
	CacheTTLAcademic time.Duration `env:"SEARCH_CACHE_TTL_ACADEMIC" envDefault:"15m"`
}

type GeneratorConfig struct {
	// BaseURL of the internal generation endpoints; empty means http://localhost:<SERVER_PORT>.
	BaseURL         string        `env:"GENERATOR_BASE_URL"`
	ReplicateAPIKey string        `env:"REPLICATE_API_KEY"`
	WavespeedAPIKey string        `env:"WAVESPEED_API_KEY"`
	ImageTimeout    time.Duration `env:"IMAGE_TIMEOUT" envDefault:"2m"`
	VideoTimeout    time.Duration `env:"VIDEO_TIMEOUT" envDefault:"1m"`
	SpeechTimeout   time.Duration `env:"SPEECH_TIMEOUT" envDefault:"90s"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Credentials gates each generator family. It is read-only after Load.
type Credentials struct {
	OpenAI     bool
	Replicate  bool
	Wavespeed  bool
	Perplexity bool
}

func (c *Config) Credentials() Credentials {
	return Credentials{
		OpenAI:     c.OpenAI.APIKey != "",
		Replicate:  c.Generator.ReplicateAPIKey != "",
		Wavespeed:  c.Generator.WavespeedAPIKey != "",
		Perplexity: c.Search.APIKey != "",
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	cfg.Generator.BaseURL = strings.TrimRight(cfg.Generator.BaseURL, "/")
	return cfg, nil
}
