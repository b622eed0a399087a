package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"codescope/internal/index"
)

var flagConfirmClear bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every indexed file and chunk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagConfirmClear {
			cmd.Println("This removes the entire index. Re-run with --confirm to proceed.")
			return nil
		}
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

		if err := ix.Clear(); err != nil {
			return err
		}
		cmd.Println("Index cleared.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&flagConfirmClear, "confirm", false, "actually clear the index")
	rootCmd.AddCommand(clearCmd)
}
