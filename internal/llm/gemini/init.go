package gemini

import (
	appconfig "github.com/zhikangxie107/intr.vu/internal/config"
	"github.com/zhikangxie107/intr.vu/internal/llm"
)

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider("gemini", func(cfg *appconfig.Config) (llm.Provider, error) {
		config, err := NewConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
