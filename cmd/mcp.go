package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codescope/internal/index"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the search engine over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	dbPath := resolveDB(wd)

	ix, err := openIndexer(dbPath, index.Config{})
	if err != nil {
		return err
	}
	defer ix.Close()

	s := mcpserver.NewMCPServer("codescope", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(indexCodebaseTool(), makeIndexHandler(ix, wd))
	s.AddTool(searchCodeTool(), makeSearchToolHandler(ix))
	s.AddTool(getContextTool(), makeContextHandler(ix))
	s.AddTool(indexStatusTool(), makeStatusHandler(ix))
	s.AddTool(clearIndexTool(), makeClearHandler(ix))

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

func indexCodebaseTool() mcp.Tool {
	return mcp.NewTool("index_codebase",
		mcp.WithDescription("Index or re-index the workspace so its code becomes searchable. Unchanged files are skipped unless force is set."),
		mcp.WithString("path",
			mcp.Description("Directory to index (default: the server's working directory)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Reindex files even when their content is unchanged"),
		),
	)
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool("search_code",
		mcp.WithDescription("Semantically search indexed code. Returns ranked chunks with file paths, line spans, scores and an overall match quality."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language description of the code to find"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of chunks to return (default 10)"),
		),
		mcp.WithNumber("similarity_threshold",
			mcp.Description("Minimum similarity score, 0 to 1 (default 0.3)"),
		),
		mcp.WithString("language",
			mcp.Description("Restrict results to one language, e.g. 'go' or 'python'"),
		),
		mcp.WithString("chunk_type",
			mcp.Description("Restrict results to one chunk kind: module, import, function, class, method or variable"),
		),
	)
}

func getContextTool() mcp.Tool {
	return mcp.NewTool("get_context",
		mcp.WithDescription("Look up a function, class or symbol by name and return its code plus nearby chunks from the same file."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Symbol name, exact or partial"),
		),
		mcp.WithBoolean("include_related",
			mcp.Description("Attach other chunks from the same file (default true)"),
		),
	)
}

func indexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Report index statistics: file and chunk counts, per-language and per-kind breakdowns, last index time."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func clearIndexTool() mcp.Tool {
	return mcp.NewTool("clear_index",
		mcp.WithDescription("Delete every indexed file and chunk. Requires confirm=true."),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true; guards against accidental deletion"),
		),
	)
}

// --- Handler factories ---

func makeIndexHandler(ix *index.Indexer, defaultRoot string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root := req.GetString("path", defaultRoot)
		force := req.GetBool("force", false)

		res, err := ix.IndexDirectory(ctx, root, force)
		if err != nil {
			if errors.Is(err, index.ErrIndexInProgress) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Indexed %s in %s\n", root, res.Duration.Round(time.Millisecond))
		fmt.Fprintf(&sb, "Files: %d indexed, %d skipped, %d removed\n",
			res.IndexedFiles, res.SkippedFiles, res.DeletedFiles)
		fmt.Fprintf(&sb, "Chunks: %d\n", res.ChunkCount)
		for _, fe := range res.Errors {
			fmt.Fprintf(&sb, "error: %s\n", fe.Error())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeSearchToolHandler(ix *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		resp, err := ix.Search(ctx, query, index.SearchOptions{
			Limit:     req.GetInt("limit", index.DefaultLimit),
			Threshold: req.GetFloat("similarity_threshold", index.DefaultThreshold),
			Language:  req.GetString("language", ""),
			Kind:      req.GetString("chunk_type", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatSearchResults(query, resp)), nil
	}
}

func makeContextHandler(ix *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identifier := req.GetString("identifier", "")
		if identifier == "" {
			return mcp.NewToolResultError("identifier is required"), nil
		}

		c, err := ix.GetContext(identifier, req.GetBool("include_related", true))
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("no chunk named %q in the index", identifier)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("context lookup failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatContext(identifier, c)), nil
	}
}

func makeStatusHandler(ix *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := ix.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Files: %d\nChunks: %d\n", stats.FileCount, stats.ChunkCount)
		if !stats.LastIndexedAt.IsZero() {
			fmt.Fprintf(&sb, "Last indexed: %s\n", stats.LastIndexedAt.Format("2006-01-02 15:04:05 MST"))
		}
		for lang, n := range stats.ByLanguage {
			fmt.Fprintf(&sb, "language %s: %d\n", lang, n)
		}
		for kind, n := range stats.ByKind {
			fmt.Fprintf(&sb, "kind %s: %d\n", kind, n)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeClearHandler(ix *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !req.GetBool("confirm", false) {
			return mcp.NewToolResultError("confirm must be true to clear the index"), nil
		}
		if err := ix.Clear(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
		}
		return mcp.NewToolResultText("Index cleared."), nil
	}
}
