package cmd

import (
	"github.com/MattJColes/icarus-sub001/internal/extract"
	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/tui"
)

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		App:     cfg,
		Store:   store,
		Scanner: index.NewScanner(store, extract.New(), cfg.Directories),
	})
}
