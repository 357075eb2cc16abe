package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSubgraphURL is the ERC-8004 registry subgraph on Sepolia.
const DefaultSubgraphURL = "https://gateway.thegraph.com/api/subgraphs/id/6wQRC7geo9XYAhckfmfo8kbMRLeWU8KQd3XsJqFKmZLT"

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Subgraph
	SubgraphURL     string
	SubgraphAPIKey  string
	SubgraphTimeout time.Duration
	MaxPageSize     int
	FeedbackLimit   int

	RedisURL string

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations

	// Tracing
	TracingExporter string // "none", "stdout" or "otlp"
	OTLPEndpoint    string
	TraceSampleRate float64
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		SubgraphURL:      getEnv("SUBGRAPH_URL", DefaultSubgraphURL),
		SubgraphAPIKey:   os.Getenv("SUBGRAPH_API_KEY"),
		SubgraphTimeout:  getEnvDuration("SUBGRAPH_TIMEOUT", 10*time.Second),
		MaxPageSize:      getEnvInt("MAX_PAGE_SIZE", 100),
		FeedbackLimit:    getEnvInt("FEEDBACK_LIMIT", 10),
		RedisURL:         os.Getenv("REDIS_URL"),
		AutoBlockEnabled: getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
		TracingExporter:  getEnv("TRACING_EXPORTER", "none"),
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRate:  getEnvFloat("TRACE_SAMPLE_RATE", 1.0),
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, rate limiting needs redis
	if cfg.Env == "production" && cfg.RedisURL == "" {
		panic("REDIS_URL is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// TracingEnabled reports whether spans should be exported.
func (c *Config) TracingEnabled() bool {
	return c.TracingExporter != "" && c.TracingExporter != "none"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
