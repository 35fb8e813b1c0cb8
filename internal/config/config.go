package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and handed to each component explicitly;
// nothing reads the environment after this.
type Config struct {
	Port string

	Postgres PostgresConfig
	Redis    RedisConfig

	Gemini  GeminiConfig
	TTS     TTSConfig
	STT     STTConfig
	Exec    ExecConfig
	Sweeper SweeperConfig

	PollInterval time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the gorm/postgres connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

type TTSConfig struct {
	BaseURL      string
	APIKey       string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Latency      int
	Notes        string
	CacheTTL     time.Duration
}

type STTConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type ExecConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

type SweeperConfig struct {
	Schedule      string
	IdleThreshold time.Duration
	Retention     time.Duration
	Enabled       bool
}

// LoadConfig reads configuration from environment variables with defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_DB", "postgres"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Gemini: GeminiConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature:     getEnvFloat("GEMINI_TEMPERATURE", 0.2),
			MaxOutputTokens: getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 120),
		},
		TTS: TTSConfig{
			BaseURL:      getEnv("TTS_BASE_URL", "https://api.elevenlabs.io"),
			APIKey:       os.Getenv("ELEVENLABS_API_KEY"),
			VoiceID:      getEnv("ELEVENLABS_VOICE_ID", "JBFqnCBsd6RMkjVDRZzb"),
			ModelID:      getEnv("ELEVENLABS_MODEL_ID", "eleven_turbo_v2"),
			OutputFormat: getEnv("ELEVENLABS_FORMAT", "mp3_44100_128"),
			Latency:      getEnvInt("ELEVENLABS_STREAM_LATENCY", 2),
			Notes:        os.Getenv("TTS_NOTES"),
			CacheTTL:     getEnvDuration("TTS_CACHE_TTL", time.Hour),
		},
		STT: STTConfig{
			BaseURL: getEnv("STT_BASE_URL", "https://api.openai.com"),
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("STT_MODEL", "whisper-1"),
		},
		Exec: ExecConfig{
			BaseURL:      getEnv("EXEC_BASE_URL", "https://api.jdoodle.com"),
			ClientID:     os.Getenv("JDOODLE_CLIENT_ID"),
			ClientSecret: os.Getenv("JDOODLE_CLIENT_SECRET"),
		},
		Sweeper: SweeperConfig{
			Schedule:      getEnv("SWEEPER_SCHEDULE", "@every 15m"),
			IdleThreshold: getEnvDuration("SWEEPER_IDLE_THRESHOLD", 2*time.Hour),
			Retention:     getEnvDuration("SWEEPER_RETENTION", 30*24*time.Hour),
			Enabled:       getEnv("SWEEPER_ENABLED", "true") == "true",
		},
		PollInterval: getEnvDuration("POLL_INTERVAL", 45*time.Second),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if cfg.TTS.Latency < 0 || cfg.TTS.Latency > 4 {
		return errors.New("tts latency must be between 0 and 4")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
