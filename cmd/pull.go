package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MattJColes/icarus-sub001/internal/llm"
)

var pullCmd = &cobra.Command{
	Use:   "pull <model>",
	Short: "Download a model through the local Ollama service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		model := args[0]
		client := llm.NewClient(cfg.OllamaURL, model)

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Pulling %s...", model))
		err = client.Pull(context.Background(), model, func(p llm.PullProgress) {
			switch {
			case p.Total > 0:
				pct := float64(p.Completed) / float64(p.Total) * 100
				spinner.UpdateText(fmt.Sprintf("%s %.1f%% (%s / %s)",
					p.Status, pct, formatBytes(p.Completed), formatBytes(p.Total)))
			case p.Status != "":
				spinner.UpdateText(p.Status)
			}
		})
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success(fmt.Sprintf("Pulled %s", model))
		return nil
	},
}

func formatBytes(n int64) string {
	const gb = 1024 * 1024 * 1024
	const mb = 1024 * 1024
	if n >= gb {
		return fmt.Sprintf("%.1f GB", float64(n)/float64(gb))
	}
	return fmt.Sprintf("%.0f MB", float64(n)/float64(mb))
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
