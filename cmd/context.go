package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codescope/internal/index"
	"codescope/internal/store"
)

var flagNoRelated bool

var contextCmd = &cobra.Command{
	Use:   "context <identifier>",
	Short: "Show a symbol's chunks plus surrounding code from its file",
	Args:  cobra.ExactArgs(1),
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

		ctx, err := ix.GetContext(args[0], !flagNoRelated)
		if err != nil {
			return err
		}
		return renderMarkdown(cmd, formatContext(args[0], ctx))
	},
}

func formatContext(identifier string, ctx *index.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Context for %q\n\n", identifier)
	for _, c := range ctx.Primary {
		writeChunk(&sb, c)
	}
	if len(ctx.Related) > 0 {
		sb.WriteString("## Related in the same file\n\n")
		for _, c := range ctx.Related {
			writeChunk(&sb, c)
		}
	}
	return sb.String()
}

func writeChunk(sb *strings.Builder, c store.Chunk) {
	fmt.Fprintf(sb, "### %s:%d-%d", c.FilePath, c.StartLine, c.EndLine)
	if c.Name != "" {
		fmt.Fprintf(sb, " (%s %s)", c.Kind, c.Name)
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(sb, "```%s\n%s\n```\n\n", mdLang(c.Language), c.Content)
}

func init() {
	contextCmd.Flags().BoolVar(&flagNoRelated, "no-related", false, "omit other chunks from the same file")
	rootCmd.AddCommand(contextCmd)
}
