package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var flagSensitivity int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the document index without starting a chat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("index is empty — run 'icarus index' first")
		}

		sensitivity := cfg.Sensitivity
		if cmd.Flags().Changed("sensitivity") {
			sensitivity = flagSensitivity
		}

		query := strings.Join(args, " ")
		hits := store.Search(query, sensitivity)
		if len(hits) == 0 {
			pterm.Info.Printfln("No matches for %q at sensitivity %d", query, sensitivity)
			return nil
		}

		for i, h := range hits {
			pterm.DefaultSection.Printfln("%d. %s (score %d, %d terms matched)",
				i+1, h.Chunk.SourceFile, h.Score, h.MatchedTerms)
			fmt.Println(h.Chunk.Content)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagSensitivity, "sensitivity", 25, "relevance threshold 0-100 (overrides config)")
	rootCmd.AddCommand(searchCmd)
}
