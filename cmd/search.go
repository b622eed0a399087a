package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"codescope/internal/index"
)

var (
	flagLimit     int
	flagThreshold float64
	flagLang      string
	flagKind      string
	flagJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed code by meaning",
	Args:  cobra.MinimumNArgs(1),
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

		query := strings.Join(args, " ")
		resp, err := ix.Search(cmd.Context(), query, index.SearchOptions{
			Limit:     flagLimit,
			Threshold: flagThreshold,
			Language:  flagLang,
			Kind:      flagKind,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		return renderMarkdown(cmd, formatSearchResults(query, resp))
	},
}

func formatSearchResults(query string, resp *index.SearchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Results for %q\n\n", query)
	fmt.Fprintf(&sb, "%d match(es), match quality **%s** (avg similarity %.2f)\n\n",
		resp.ResultCount, resp.QualityClass, resp.AvgSimilarity)
	for i, r := range resp.Results {
		c := r.Chunk
		fmt.Fprintf(&sb, "## %d. %s:%d-%d", i+1, c.FilePath, c.StartLine, c.EndLine)
		if c.Name != "" {
			fmt.Fprintf(&sb, " (%s %s)", c.Kind, c.Name)
		}
		fmt.Fprintf(&sb, "\n\nscore %.3f\n\n", r.Score)
		fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", mdLang(c.Language), c.Content)
		if c.Docstring != "" {
			fmt.Fprintf(&sb, "> %s\n\n", firstLine(c.Docstring))
		}
	}
	if resp.ResultCount == 0 {
		sb.WriteString("No chunks cleared the similarity threshold. Try a lower --threshold or broader wording.\n")
	}
	return sb.String()
}

func renderMarkdown(cmd *cobra.Command, md string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		cmd.Print(md)
		return nil
	}
	out, err := r.Render(md)
	if err != nil {
		cmd.Print(md)
		return nil
	}
	cmd.Print(out)
	return nil
}

func mdLang(lang string) string {
	if lang == "unknown" {
		return ""
	}
	return lang
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", index.DefaultLimit, "maximum results")
	searchCmd.Flags().Float64Var(&flagThreshold, "threshold", index.DefaultThreshold, "minimum similarity score")
	searchCmd.Flags().StringVar(&flagLang, "lang", "", "restrict to one language")
	searchCmd.Flags().StringVar(&flagKind, "kind", "", "restrict to one chunk kind")
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "machine-readable output")
	rootCmd.AddCommand(searchCmd)
}
