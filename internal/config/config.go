// Package config loads and persists the application settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MaxDirectories caps how many root directories may be indexed.
const MaxDirectories = 5

// Generation holds the model generation parameters.
type Generation struct {
	Temperature   float64 `yaml:"temperature"`
	ContextWindow int     `yaml:"context_window"`
	TopP          float64 `yaml:"top_p"`
	TopK          int     `yaml:"top_k"`
	RepeatPenalty float64 `yaml:"repeat_penalty"`
}

// Config is the root application configuration structure.
type Config struct {
	OllamaURL    string     `yaml:"ollama_url"`
	ChatModel    string     `yaml:"chat_model"`
	Directories  []string   `yaml:"directories"`
	Sensitivity  int        `yaml:"sensitivity"`
	RAGEnabled   bool       `yaml:"rag_enabled"`
	ReindexHours int        `yaml:"reindex_hours"`
	SnapshotPath string     `yaml:"snapshot_path"`
	Generation   Generation `yaml:"generation"`
}

// Load reads a config from the given path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	// Decode over a defaults-populated struct so omitted keys keep their
	// default values (notably rag_enabled, which defaults to true).
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./icarus.yaml first, then ~/.config/icarus/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*Config, string, error) {
	cwdPath := "icarus.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "icarus", "config.yaml"), nil
}

func defaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".icarus", "index.json")
	}
	return filepath.Join(home, ".config", "icarus", "index.json")
}

func defaultConfig() *Config {
	return &Config{
		OllamaURL:    "http://localhost:11434",
		ChatModel:    "qwen3:8b",
		Sensitivity:  25,
		RAGEnabled:   true,
		ReindexHours: 4,
		SnapshotPath: defaultSnapshotPath(),
		Generation: Generation{
			Temperature:   0.7,
			ContextWindow: 8192,
			TopP:          0.9,
			TopK:          40,
			RepeatPenalty: 1.1,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = def.OllamaURL
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.ReindexHours <= 0 {
		cfg.ReindexHours = def.ReindexHours
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = def.SnapshotPath
	}
	if cfg.Sensitivity < 0 {
		cfg.Sensitivity = 0
	}
	if cfg.Sensitivity > 100 {
		cfg.Sensitivity = 100
	}
	if len(cfg.Directories) > MaxDirectories {
		fmt.Fprintf(os.Stderr, "warning: config lists %d directories, only the first %d are indexed\n",
			len(cfg.Directories), MaxDirectories)
		cfg.Directories = cfg.Directories[:MaxDirectories]
	}
	if cfg.Generation == (Generation{}) {
		cfg.Generation = def.Generation
	}
}
