package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
)

var demoParagraphs = []string{
	"I have a pen, I have a book",
	"My name is Pencil",
	"I have books, book",
	"I have booked.",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Score the built-in sample corpus",
	Long:  `Tokenizes four sample paragraphs and scores paragraph 0 against the rest.`,
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	result, err := scorer.Execute(cmd.Context(), executor.Request{
		Paragraphs:    demoParagraphs,
		QueryIndex:    0,
		IncludeTokens: true,
	})
	if err != nil {
		return fmt.Errorf("demo failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Tokens:")
	for i, tokens := range result.Tokens {
		fmt.Fprintf(out, "  [%d] %s\n", i, strings.Join(tokens, " "))
	}
	fmt.Fprintf(out, "\nScores against [0]:\n")
	for _, e := range result.Results {
		fmt.Fprintf(out, "  [%d] %.6f\n", e.Index, e.Score)
	}
	return nil
}
