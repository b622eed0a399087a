package cmd

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"codescope/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dbPath := resolveDB(wd)
		if err := requireIndex(dbPath); err != nil {
			return err
		}

		ix, err := openIndexer(dbPath, index.Config{})
		if err != nil {
			return err
		}
		defer ix.Close()

		stats, err := ix.Stats()
		if err != nil {
			return err
		}

		cmd.Printf("Index: %s\n", dbPath)
		cmd.Printf("  Files:  %d\n", stats.FileCount)
		cmd.Printf("  Chunks: %d\n", stats.ChunkCount)
		if !stats.LastIndexedAt.IsZero() {
			cmd.Printf("  Last indexed: %s\n", stats.LastIndexedAt.Local().Format("2006-01-02 15:04:05"))
		}
		printBreakdown(cmd, "By language", stats.ByLanguage)
		printBreakdown(cmd, "By kind", stats.ByKind)
		return nil
	},
}

func printBreakdown(cmd *cobra.Command, header string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cmd.Printf("  %s:\n", header)
	for _, k := range keys {
		cmd.Printf("    %-12s %d\n", k, counts[k])
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
