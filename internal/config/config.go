// Package config loads the service configuration from the environment,
// following the same env-with-fallback convention the rest of the
// deployment tooling expects.
package config

import "os"

// Config holds every runtime setting of the backend.
type Config struct {
	// HTTPAddr is the listen address of the public API, e.g. ":8080".
	HTTPAddr string

	// DBPath is the SQLite database file. "file::memory:?cache=shared"
	// works for throwaway local runs.
	DBPath string

	// RedisAddr is the catalog cache. Empty disables caching.
	RedisAddr string

	// Razorpay credentials. KeySecret is also the HMAC secret used to
	// verify payment signatures on the callback.
	RazorpayKeyID     string
	RazorpayKeySecret string
	// RazorpayBaseURL is overridable for tests and sandbox environments.
	RazorpayBaseURL string

	// Currency is the fixed deployment currency for gateway orders.
	Currency string

	// AllowPaidDirectBuy opens the no-verification buy path for priced
	// items. Dev/test deployments only; defaults to off.
	AllowPaidDirectBuy bool

	// ServiceName identifies this process in traces and logs.
	ServiceName string
}

// Load reads the configuration from environment variables, applying
// defaults suitable for local development.
func Load() Config {
	return Config{
		HTTPAddr:           ":" + getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "./data/backend.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:    getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		Currency:           getEnv("CURRENCY", "INR"),
		AllowPaidDirectBuy: getEnv("ALLOW_PAID_DIRECT_BUY", "") == "true",
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "3d-ecommerce-backend"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
