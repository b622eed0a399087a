package cmd

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"codescope/internal/index"
	"codescope/internal/tui"
)

var (
	flagForce   bool
	flagWorkers int
	flagPlain   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a workspace for semantic search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		dbPath := resolveDB(root)

		if flagPlain {
			return runIndexPlain(cmd, root, dbPath)
		}

		rep := tui.NewReporter()
		ix, err := openIndexer(dbPath, index.Config{
			Workers:    flagWorkers,
			OnProgress: rep.Progress,
		})
		if err != nil {
			return err
		}
		defer ix.Close()

		res, err := tui.RunIndexing(cmd.Context(), ix, rep, root, flagForce)
		if err != nil {
			return err
		}
		reportErrors(cmd, res)
		return nil
	},
}

func runIndexPlain(cmd *cobra.Command, root, dbPath string) error {
	ix, err := openIndexer(dbPath, index.Config{Workers: flagWorkers})
	if err != nil {
		return err
	}
	defer ix.Close()

	cmd.Printf("Indexing %s...\n", root)
	res, err := ix.IndexDirectory(cmd.Context(), root, flagForce)
	if res != nil {
		cmd.Printf("\nDone in %s\n", res.Duration.Round(time.Millisecond))
		cmd.Printf("  Files:   %d indexed, %d skipped, %d removed\n",
			res.IndexedFiles, res.SkippedFiles, res.DeletedFiles)
		cmd.Printf("  Chunks:  %d\n", res.ChunkCount)
		reportErrors(cmd, res)
	}
	return err
}

func reportErrors(cmd *cobra.Command, res *index.Result) {
	if res == nil || len(res.Errors) == 0 {
		return
	}
	cmd.PrintErrf("%d file(s) failed:\n", len(res.Errors))
	for _, fe := range res.Errors {
		cmd.PrintErrln("  " + fe.Error())
	}
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "reindex files even when unchanged")
	indexCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "parallel workers")
	indexCmd.Flags().BoolVar(&flagPlain, "plain", false, "plain output without the progress display")
	rootCmd.AddCommand(indexCmd)
}
