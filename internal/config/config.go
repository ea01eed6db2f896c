package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	AllowOrigins string
	LogLevel     string
	LogFormat    string

	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	OpenAIKey       string
	OpenAIBaseURL   string
	OpenAILlmModel  string
	OpenAIWhisper   string
	OpenAITTSModel  string
	OpenAITTSVoice  string
	TranscribeLang  string
	ChatTemperature float64
	ChatMaxTokens   int
	ReqTimeoutSec   int

	MaxAudioMB int64
	MaxImageMB int64

	StorageDriver string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil { return i }
	}
	return def
}

func atof(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil { return f }
	}
	return def
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getenv("DB_USER", "postgres"),
		getenv("DB_PASSWORD", "postgres"),
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		getenv("DB_NAME", "voice_ai"),
		getenv("DB_SSLMODE", "disable"),
	)
}

func Load() *Config {
	return &Config{
		Port:            getenv("PORT", "8080"),
		AllowOrigins:    getenv("ALLOW_ORIGINS", "*"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		DatabaseURL:     databaseURL(),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:        time.Duration(atoi("TOKEN_TTL_HOURS", 24)) * time.Hour,
		OpenAIKey:       getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAILlmModel:  getenv("OPENAI_LLM_MODEL", "gpt-3.5-turbo"),
		OpenAIWhisper:   getenv("OPENAI_WHISPER_MODEL", "whisper-1"),
		OpenAITTSModel:  getenv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:  getenv("OPENAI_TTS_VOICE", "alloy"),
		TranscribeLang:  getenv("TRANSCRIBE_LANGUAGE", "tr"),
		ChatTemperature: atof("CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:   atoi("CHAT_MAX_TOKENS", 150),
		ReqTimeoutSec:   atoi("REQUEST_TIMEOUT_SECONDS", 30),
		MaxAudioMB:      int64(atoi("MAX_AUDIO_MB", 10)),
		MaxImageMB:      int64(atoi("MAX_IMAGE_MB", 5)),
		StorageDriver:   getenv("STORAGE_DRIVER", "local"),
		UploadDir:       getenv("UPLOAD_DIR", "uploads"),
		S3Bucket:        getenv("S3_BUCKET", ""),
		S3Region:        getenv("S3_REGION", "us-east-1"),
		S3Endpoint:      getenv("S3_ENDPOINT", ""),
		S3AccessKey:     getenv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getenv("S3_SECRET_KEY", ""),
	}
}

func (c *Config) RequestTimeout() time.Duration {
	if c.ReqTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ReqTimeoutSec) * time.Second
}

func (c *Config) MaxAudioBytes() int64 { return c.MaxAudioMB * 1024 * 1024 }

func (c *Config) MaxImageBytes() int64 { return c.MaxImageMB * 1024 * 1024 }
