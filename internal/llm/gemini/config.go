package gemini

import (
	"errors"

	appconfig "github.com/zhikangxie107/intr.vu/internal/config"
)

// Config holds Gemini-specific configuration.
type Config struct {
	APIKey string
	Model  string
}

// NewConfig derives the Gemini configuration from the application config.
func NewConfig(cfg *appconfig.Config) (*Config, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	model := cfg.Gemini.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  model,
	}, nil
}
