package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codescope/internal/embedder"
	"codescope/internal/index"
)

var (
	flagDB       string
	flagEmbedder string
	flagOllama   string
	flagModel    string
	flagDim      int
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "codescope",
	Short: "Code-aware semantic search over local workspaces",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default <workspace>/.codescope/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagEmbedder, "embedder", "local", "embedding backend: local or ollama")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "http://localhost:11434", "ollama base URL")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "nomic-embed-text", "ollama embedding model")
	rootCmd.PersistentFlags().IntVar(&flagDim, "dim", embedder.DefaultDimension, "embedding dimension")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func newEmbedder() (embedder.Embedder, error) {
	switch flagEmbedder {
	case "local":
		return embedder.NewLocal(flagDim), nil
	case "ollama":
		return embedder.NewOllama(flagOllama, flagModel, flagDim), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q (want local or ollama)", flagEmbedder)
	}
}

// resolveDB picks the database path: the --db flag if set, otherwise
// <workspace>/.codescope/index.db.
func resolveDB(workspace string) string {
	if flagDB != "" {
		return flagDB
	}
	return filepath.Join(workspace, ".codescope", "index.db")
}

func openIndexer(dbPath string, cfg index.Config) (*index.Indexer, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	emb, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	cfg.DBPath = dbPath
	return index.New(cfg, emb)
}

// requireIndex fails with a hint when the database does not exist yet.
func requireIndex(dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("index not found at %s\nRun 'codescope index <path>' first to build it", dbPath)
	}
	return nil
}
