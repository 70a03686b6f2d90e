// Package agent selects which completion backend each pipeline stage
// uses, driven by an optional yaml config file.
package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"ecosystem_mapper/pkg/core/llm"
)

// Config controls provider selection. Stages ("taxonomy", "enrichment")
// may override the global active provider.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Model          string                 `yaml:"model"`
	Stages         map[string]StageConfig `yaml:"stages"`
}

// StageConfig is a per-stage provider override.
type StageConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// LoadConfig reads a yaml config file. A missing path returns the default
// config (OpenRouter for everything).
func LoadConfig(path string) (Config, error) {
	config := Config{ActiveProvider: "openrouter"}
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.ActiveProvider == "" {
		config.ActiveProvider = "openrouter"
	}
	return config, nil
}

// Manager resolves provider names to constructed providers, caching them
// so credentials are validated once per provider.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

// NewManager creates a manager for the given config.
func NewManager(config Config) *Manager {
	return &Manager{
		config:    config,
		providers: make(map[string]llm.Provider),
	}
}

// Provider returns the provider for a stage, honoring stage overrides and
// falling back to the global active provider. Construction errors (missing
// credentials) surface here, before any pipeline work starts.
func (m *Manager) Provider(stage string) (llm.Provider, error) {
	name := m.config.ActiveProvider
	if stageConfig, ok := m.config.Stages[stage]; ok && stageConfig.Provider != "" {
		name = stageConfig.Provider
	}
	return m.resolve(name)
}

func (m *Manager) resolve(name string) (llm.Provider, error) {
	if p, ok := m.providers[name]; ok {
		return p, nil
	}

	var (
		p   llm.Provider
		err error
	)
	switch name {
	case "openrouter":
		p, err = llm.NewOpenRouterProvider()
	case "gemini":
		p, err = llm.NewGeminiProvider(m.config.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	if err != nil {
		return nil, err
	}

	m.providers[name] = p
	return p, nil
}
