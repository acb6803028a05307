// Package config loads analyzer settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	minSizeWorkers = 1
	maxSizeWorkers = 64
)

// Config holds analyzer configuration.
type Config struct {
	// Paths added as roots on startup.
	Paths []string

	// Exclude patterns applied to the explorer report.
	Exclude []string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Roots measured concurrently during a recompute.
	SizeWorkers int
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Paths:       splitPathList(os.Getenv("MO_ANALYZE_PATH")),
		Exclude:     splitCSV(os.Getenv("MO_EXCLUDE")),
		LogLevel:    getEnv("MO_LOG_LEVEL", "info"),
		LogFormat:   getEnv("MO_LOG_FORMAT", "json"),
		LogFile:     os.Getenv("MO_LOG_FILE"),
		SizeWorkers: clampWorkers(getEnvAsInt("MO_SIZE_WORKERS", runtime.NumCPU())),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func clampWorkers(n int) int {
	if n < minSizeWorkers {
		return minSizeWorkers
	}
	if n > maxSizeWorkers {
		return maxSizeWorkers
	}
	return n
}

func splitPathList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
