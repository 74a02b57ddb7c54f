package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the server needs. Values come
// from the environment with a .env file loaded first when present.
type Config struct {
	Port      string
	JWTSecret string

	UploadDir string
	ExportDir string
	TempDir   string

	MaxUploadMB int64

	WhisperScript string
	PythonCommand string
	WhisperModel  string

	WorkerCount int
	QueueSize   int

	StripeKey        string
	StripeSuccessURL string
	StripeCancelURL  string
}

// Load reads the environment into a Config. Missing optional values
// fall back to development defaults; required values are checked at
// the point of use.
func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		UploadDir: getEnv("UPLOAD_DIR", "./data/uploads"),
		ExportDir: getEnv("EXPORT_DIR", "./data/exports"),
		TempDir:   getEnv("TEMP_DIR", "./data/tmp"),

		MaxUploadMB: getEnvInt64("MAX_UPLOAD_MB", 500),

		WhisperScript: getEnv("WHISPER_SCRIPT", "./scripts/whisper_transcribe.py"),
		PythonCommand: getEnv("PYTHON_COMMAND", "python3"),
		WhisperModel:  getEnv("WHISPER_MODEL", "base"),

		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		QueueSize:   getEnvInt("QUEUE_SIZE", 100),

		StripeKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeSuccessURL: getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/billing/success"),
		StripeCancelURL:  getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/billing/cancel"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
