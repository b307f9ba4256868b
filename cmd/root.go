package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MattJColes/icarus-sub001/internal/config"
	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/llm"
)

var (
	flagConfig string
	flagOllama string
	flagModel  string
)

var rootCmd = &cobra.Command{
	Use:   "icarus",
	Short: "Chat with a local model over your own documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./icarus.yaml or ~/.config/icarus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "", "ollama base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "chat model (overrides config)")
}

// loadConfig resolves the effective configuration, applying flag overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagOllama != "" {
		cfg.OllamaURL = flagOllama
	}
	if flagModel != "" {
		cfg.ChatModel = flagModel
	}
	return cfg, nil
}

// openStore creates the store and loads the persisted snapshot.
func openStore(cfg *config.Config) (*index.Store, error) {
	store := index.NewStore(cfg.SnapshotPath)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// genOptions maps configured generation parameters onto the wire options.
func genOptions(cfg *config.Config) *llm.Options {
	return &llm.Options{
		Temperature:   cfg.Generation.Temperature,
		NumCtx:        cfg.Generation.ContextWindow,
		TopP:          cfg.Generation.TopP,
		TopK:          cfg.Generation.TopK,
		RepeatPenalty: cfg.Generation.RepeatPenalty,
	}
}
