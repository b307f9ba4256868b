package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/MattJColes/icarus-sub001/internal/index"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing document search tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return fmt.Errorf("index is empty at %s\nRun 'icarus index' first to build it", cfg.SnapshotPath)
	}

	s := mcpserver.NewMCPServer("icarus", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchDocumentsTool(), makeSearchHandler(store, cfg.Sensitivity))
	s.AddTool(indexStatusTool(), makeStatusHandler(store, cfg.SnapshotPath))
	s.AddTool(listIndexedFilesTool(), makeListFilesHandler(store))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Search the indexed personal documents by keyword relevance. Returns the best-matching text chunks with their source files."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keywords to search the documents for"),
		),
		mcp.WithNumber("sensitivity",
			mcp.Description("Relevance threshold 0-100 (default: configured value)"),
		),
	)
}

func indexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Report how many files and chunks are currently indexed."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func listIndexedFilesTool() mcp.Tool {
	return mcp.NewTool("list_indexed_files",
		mcp.WithDescription("List every file in the document index."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeSearchHandler(store *index.Store, defaultSensitivity int) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		sensitivity := req.GetInt("sensitivity", defaultSensitivity)
		if sensitivity < 0 || sensitivity > 100 {
			return mcp.NewToolResultError("sensitivity must be between 0 and 100"), nil
		}

		hits := store.Search(query, sensitivity)
		return mcp.NewToolResultText(formatSearchResults(query, hits)), nil
	}
}

func makeStatusHandler(store *index.Store, snapshotPath string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf("Index at %s holds %d chunks across %d files.",
			snapshotPath, store.Len(), len(store.Files()))), nil
	}
}

func makeListFilesHandler(store *index.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		files := store.Files()
		var sb strings.Builder
		fmt.Fprintf(&sb, "## Indexed files (%d)\n\n", len(files))
		for _, f := range files {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(query string, hits []index.Hit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, h.Chunk.SourceFile)
		fmt.Fprintf(&sb, "**Score:** %d  \n**Terms matched:** %d  \n**Modified:** %s\n\n",
			h.Score, h.MatchedTerms, h.Chunk.LastModified.Format("2006-01-02 15:04"))
		fmt.Fprintf(&sb, "%s\n\n", h.Chunk.Content)
	}
	return sb.String()
}
