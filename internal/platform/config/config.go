package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the gateway process needs from its environment.
type Config struct {
	Addr string

	// TreasuryBaseURL is the root of the línea-de-captura service
	// (POST /api/lineas/generar, GET /api/lineas/{codigo}/validar).
	TreasuryBaseURL string
	// BackendBaseURL is the root of the violations backend (POST /api/multas).
	BackendBaseURL string

	// QueueDBPath is the Bolt file backing the offline queue. Empty means
	// in-memory only, which loses queued violations on restart; fine for
	// tests, never for the field build.
	QueueDBPath string

	TreasuryTimeout time.Duration
	SubmitTimeout   time.Duration
	DrainInterval   time.Duration
	MaxAttempts     int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:            getenv("MULTA_GATEWAY_ADDR", ":8080"),
		TreasuryBaseURL: getenv("TESORERIA_URL", "http://localhost:9090"),
		BackendBaseURL:  getenv("MULTAS_API_URL", "http://localhost:9091"),
		QueueDBPath:     getenv("QUEUE_DB_PATH", "cola-multas.db"),
		TreasuryTimeout: getenvDuration("TESORERIA_TIMEOUT", 10*time.Second),
		SubmitTimeout:   getenvDuration("SUBMIT_TIMEOUT", 30*time.Second),
		DrainInterval:   getenvDuration("DRAIN_INTERVAL", 30*time.Second),
		MaxAttempts:     getenvInt("MAX_SUBMIT_ATTEMPTS", 10),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
