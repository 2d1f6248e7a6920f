package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Version is the released CLI version, reported in the User-Agent string.
const Version = "1.0.0"

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	DBPath    string
	OutputDir string

	ReviewsBaseURL string
	StatsBaseURL   string

	RequestDelay  time.Duration
	MaxRetries    int
	BackoffBase   time.Duration
	BackoffFactor float64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		DBPath:         env("HELLOPETER_DB_PATH", "hellopeter_reviews.db"),
		OutputDir:      env("HELLOPETER_OUTPUT_DIR", "output"),
		ReviewsBaseURL: env("HELLOPETER_REVIEWS_BASE_URL", "https://api-v6.hellopeter.com/api/consumer/business"),
		StatsBaseURL:   env("HELLOPETER_STATS_BASE_URL", "https://api-v6.hellopeter.com/api/consumer/business-stats"),
		RequestDelay:   time.Duration(atoi("HELLOPETER_REQUEST_DELAY_MS", 1000)) * time.Millisecond,
		MaxRetries:     atoi("HELLOPETER_MAX_RETRIES", 3),
		BackoffBase:    time.Duration(atoi("HELLOPETER_BACKOFF_BASE_MS", 500)) * time.Millisecond,
		BackoffFactor:  floatEnv("HELLOPETER_BACKOFF_FACTOR", 2.0),
	}
}

// UserAgent is the client-identifying header sent on every platform request.
func UserAgent() string {
	return fmt.Sprintf("hellopeter-cli/%s (+https://github.com/MatthewGuile/hellopeter-cli)", Version)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatEnv(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
