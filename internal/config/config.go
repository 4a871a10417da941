package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by BELIEFD_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("BELIEFD_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIKey returns the bearer token required on /v1 routes.
// Empty means authentication is disabled (single-user local mode).
func APIKey() string {
	return os.Getenv("API_KEY")
}

// ConfidenceDecayPerDay returns the daily confidence reduction applied by the
// decay sweep. Defaults to 0.01.
func ConfidenceDecayPerDay() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_DECAY_PER_DAY"), 64)
	if err != nil || v < 0 {
		return 0.01
	}
	return v
}

// MinConfidenceFloor returns the lower clamp bound for belief confidence.
// Defaults to 0.3.
func MinConfidenceFloor() float32 {
	v, err := strconv.ParseFloat(os.Getenv("MIN_CONFIDENCE_FLOOR"), 32)
	if err != nil || v < 0 || v > 1 {
		return 0.3
	}
	return float32(v)
}

// ContradictionThreshold returns the contradicting-evidence count at which a
// belief is flagged for review. Defaults to 3.
func ContradictionThreshold() int {
	v, err := strconv.Atoi(os.Getenv("CONTRADICTION_THRESHOLD"))
	if err != nil || v <= 0 {
		return 3
	}
	return v
}

// FingerprintDims returns the fingerprint vector dimensionality.
// Defaults to 384. Changing it orphans previously stored fingerprints.
func FingerprintDims() int {
	v, err := strconv.Atoi(os.Getenv("FINGERPRINT_DIMS"))
	if err != nil || v <= 0 {
		return 384
	}
	return v
}

// DecayInterval returns how often the background decay sweep runs.
// Defaults to 1 hour.
func DecayInterval() time.Duration {
	v, err := strconv.Atoi(os.Getenv("DECAY_INTERVAL_MINUTES"))
	if err != nil || v <= 0 {
		return time.Hour
	}
	return time.Duration(v) * time.Minute
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
