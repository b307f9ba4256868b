package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MattJColes/icarus-sub001/internal/extract"
	"github.com/MattJColes/icarus-sub001/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Scan the configured directories and update the document index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Directories) == 0 {
			return fmt.Errorf("no directories configured — add paths under 'directories' in your config file")
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		spinner, _ := pterm.DefaultSpinner.Start("Scanning documents...")
		scanner := index.NewScanner(store, extract.New(), cfg.Directories)
		scanner.OnProgress(func(file string, done, total int) {
			spinner.UpdateText(fmt.Sprintf("(%d/%d) %s", done, total, file))
		})

		start := time.Now()
		res, err := scanner.Scan()
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Stop()

		if res.UpToDate {
			pterm.Success.Println("Index is up to date — nothing to do")
			return nil
		}
		pterm.Success.Printfln("Indexed %d of %d files in %s (%d unchanged, %d unreadable, %d stale chunks pruned)",
			res.FilesProcessed, res.FilesTotal, time.Since(start).Round(time.Millisecond),
			res.FilesSkipped, res.FilesFailed, res.ChunksPruned)
		pterm.Info.Printfln("%d chunks in index", store.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
