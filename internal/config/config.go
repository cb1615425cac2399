package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the optional recognition audit log.
// An empty Host disables the audit log entirely.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether an audit database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// OCRConfig controls request decoding and dispatch to the recognition engine.
type OCRConfig struct {
	// Engine selects the recognition backend: "remote" or "gemini".
	Engine string
	// MaxDecodedBytes bounds the decoded file content. Zero disables the check.
	MaxDecodedBytes int64
	// Timeout bounds a single engine call.
	Timeout time.Duration
	// ExposeEngineDetail controls whether engine failure detail is echoed to clients.
	ExposeEngineDetail bool
}

// RemoteEngineConfig points to an HTTP recognition engine.
type RemoteEngineConfig struct {
	URL     string
	Timeout time.Duration
}

// GeminiConfig holds Google Gemini credentials for the gemini engine.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	BodyLimit     int
	Location      *time.Location
	LogLevel      string
	DefaultLocale string
	OCR           OCRConfig
	Remote        RemoteEngineConfig
	Gemini        GeminiConfig
	Database      DatabaseConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		BodyLimit:     getEnvInt("BODY_LIMIT_MB", 32) << 20,
		Location:      getEnvLocation("TZ_LOCATION", time.UTC),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "fr"),
		OCR: OCRConfig{
			Engine:             getEnv("OCR_ENGINE", "remote"),
			MaxDecodedBytes:    int64(getEnvInt("OCR_MAX_DECODED_MB", 20)) << 20,
			Timeout:            time.Duration(getEnvInt("OCR_RECOGNITION_TIMEOUT_SEC", 60)) * time.Second,
			ExposeEngineDetail: getEnvBool("OCR_EXPOSE_ENGINE_DETAIL", true),
		},
		Remote: RemoteEngineConfig{
			URL:     getEnv("OCR_REMOTE_URL", "http://localhost:9090/recognize"),
			Timeout: time.Duration(getEnvInt("OCR_REMOTE_TIMEOUT_SEC", 120)) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvLocation(key string, def *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		loc, err := time.LoadLocation(v)
		if err == nil {
			return loc
		}
	}
	return def
}
