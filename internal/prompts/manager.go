package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into the binary
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is the interface consumers depend on; the manager is the
// only production implementation.
type PromptProvider interface {
	BuildPrompt(mode, variant string, data map[string]string) (string, error)
	System(mode string) (string, error)
}

type PromptManager struct {
	system  map[string]string            // mode -> system instruction
	prompts map[string]map[string]string // mode -> variant -> template
}

// loaded prompt template file
type promptTemplate struct {
	System   string            `yaml:"system"`
	Variants map[string]string `yaml:"variants"`
}

// NewPromptManager loads all templates from the embedded filesystem.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		system:  make(map[string]string),
		prompts: make(map[string]map[string]string),
	}
	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return pm, nil
}

// BuildPrompt renders the template for the given mode and variant,
// replacing {{.Key}} placeholders from data. Placeholder substitution is
// plain string replacement; templates carry no logic.
func (pm *PromptManager) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	variants, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}
	tmpl, exists := variants[variant]
	if !exists {
		return "", fmt.Errorf("variant %q not found for mode %q", variant, mode)
	}

	result := tmpl
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result, nil
}

// System returns the fixed system instruction for a mode.
func (pm *PromptManager) System(mode string) (string, error) {
	s, exists := pm.system[mode]
	if !exists {
		return "", fmt.Errorf("system instruction not found for mode: %s", mode)
	}
	return s, nil
}

func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var tmpl promptTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		mode := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.system[mode] = strings.TrimSpace(tmpl.System)
		pm.prompts[mode] = make(map[string]string)
		for variant, body := range tmpl.Variants {
			pm.prompts[mode][variant] = strings.TrimSpace(body)
		}
	}

	return nil
}
