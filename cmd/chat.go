package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/llm"
	"github.com/MattJColes/icarus-sub001/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model from the terminal, streaming the reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		if cfg.RAGEnabled && store.Len() == 0 {
			fmt.Fprintln(os.Stderr, "note: document index is empty — run 'icarus index' to enable retrieval")
		}

		client := llm.NewClient(cfg.OllamaURL, cfg.ChatModel)
		opts := genOptions(cfg)

		var history []llm.Message
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("icarus chat (type /help for commands, /exit to quit)")
		fmt.Println()

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			switch question {
			case "/exit", "/quit":
				fmt.Println("Goodbye.")
				return nil
			case "/clear":
				history = nil
				fmt.Println("Conversation cleared.")
				continue
			case "/help":
				fmt.Println("Commands:")
				fmt.Println("  /clear  - clear conversation history")
				fmt.Println("  /exit   - quit chat")
				fmt.Println("  /help   - show this help")
				continue
			}

			var hits []index.Hit
			if cfg.RAGEnabled {
				hits = store.Search(question, cfg.Sensitivity)
			}
			if len(hits) > 0 {
				sources := rag.SourcesFromHits(question, hits)
				fmt.Println("[sources]")
				for _, s := range sources.Sources {
					fmt.Printf("  %s (modified %s)\n", s.File, s.LastModified.Format("2006-01-02"))
				}
				fmt.Println()
			}

			msgs := rag.BuildMessages(hits, history, question)
			reply, err := client.Chat(context.Background(), msgs, opts, func(ev llm.StreamEvent) {
				fmt.Print(ev.Message.Content)
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "\ngeneration error: %v\n", err)
				continue
			}
			fmt.Println()
			fmt.Println()

			// Keep last 10 turns of history.
			history = append(history, llm.Message{Role: "user", Content: question})
			history = append(history, llm.Message{Role: "assistant", Content: reply.Content})
			if len(history) > 20 {
				history = history[len(history)-20:]
			}
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
