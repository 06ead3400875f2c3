// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ServerReadTimeout is the maximum duration for reading an entire request.
	ServerReadTimeout time.Duration
	// ServerWriteTimeout is the maximum duration before timing out writes of a response.
	ServerWriteTimeout time.Duration
	// ServerShutdownTimeout is how long a graceful shutdown may take before the
	// server is torn down forcibly.
	ServerShutdownTimeout time.Duration

	// RedisAddr is the host:port address of the Redis record store.
	RedisAddr string
	// RedisPassword is the password used to authenticate against Redis.
	RedisPassword string
	// RedisDB is the Redis logical database number.
	RedisDB int
	// RedisPoolSize is the maximum number of socket connections to Redis.
	RedisPoolSize int
	// RedisDialTimeout is the timeout for establishing new Redis connections.
	RedisDialTimeout time.Duration

	// LinkExpiration is the default time-to-live applied to generated links.
	LinkExpiration time.Duration
	// LinkCodeLength is the number of characters in a generated short code.
	LinkCodeLength int
	// LinkMaxCodeAttempts bounds the collision retries of the code generator.
	LinkMaxCodeAttempts int
	// LinkKeyAlgorithm selects the AEAD algorithm for new envelopes
	// ("aes-gcm" or "chacha20-poly1305").
	LinkKeyAlgorithm string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for per-client rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSKeyURI is the URI of the KMS key used to unwrap link keys. When empty,
	// link keys are read as plain base64 from the environment.
	KMSKeyURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:            env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:            env.GetInt("SERVER_PORT", 8080),
		ServerReadTimeout:     env.GetDuration("SERVER_READ_TIMEOUT_SECONDS", 10, time.Second),
		ServerWriteTimeout:    env.GetDuration("SERVER_WRITE_TIMEOUT_SECONDS", 10, time.Second),
		ServerShutdownTimeout: env.GetDuration("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),

		// Record store configuration
		RedisAddr:        env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    env.GetString("REDIS_PASSWORD", ""),
		RedisDB:          env.GetInt("REDIS_DB", 0),
		RedisPoolSize:    env.GetInt("REDIS_POOL_SIZE", 10),
		RedisDialTimeout: env.GetDuration("REDIS_DIAL_TIMEOUT_SECONDS", 5, time.Second),

		// Link issuance
		LinkExpiration:      env.GetDuration("LINK_EXPIRATION_SECONDS", 3600, time.Second),
		LinkCodeLength:      env.GetInt("LINK_CODE_LENGTH", 6),
		LinkMaxCodeAttempts: env.GetInt("LINK_MAX_CODE_ATTEMPTS", 10),
		LinkKeyAlgorithm:    env.GetString("LINK_KEY_ALGORITHM", "aes-gcm"),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "securelink"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// KMS configuration
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
