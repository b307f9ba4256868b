package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every chunk from the document index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		n := store.Len()
		if err := store.Clear(); err != nil {
			return err
		}
		pterm.Success.Printfln("Removed %d chunks from %s", n, cfg.SnapshotPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
