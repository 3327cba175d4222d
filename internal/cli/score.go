package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
)

var (
	scoreQuery  int
	scoreRanked bool
	scoreLimit  int
	scoreJSON   bool
	scoreFiles  []string
)

var scoreCmd = &cobra.Command{
	Use:   "score [paragraph...]",
	Short: "Score paragraphs against a query paragraph",
	Long: `Scores every paragraph against the one at --query. Paragraphs come
from the arguments followed by every non-empty line of each --file. With
neither, non-empty lines of stdin are used. Result indices refer to the
combined paragraph list.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().IntVarP(&scoreQuery, "query", "q", 0, "index of the query paragraph")
	scoreCmd.Flags().BoolVar(&scoreRanked, "ranked", false, "sort results by descending score")
	scoreCmd.Flags().IntVarP(&scoreLimit, "limit", "n", 0, "maximum number of results with --ranked (0 means all)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output the result as JSON")
	scoreCmd.Flags().StringSliceVarP(&scoreFiles, "file", "f", nil, "read one paragraph per line from file")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if scoreLimit != 0 && !scoreRanked {
		return errors.New("--limit requires --ranked")
	}
	paragraphs := append([]string(nil), args...)
	for _, path := range scoreFiles {
		lines, err := readParagraphFile(path)
		if err != nil {
			return err
		}
		paragraphs = append(paragraphs, lines...)
	}
	if len(args) == 0 && len(scoreFiles) == 0 {
		lines, err := readParagraphs(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		paragraphs = lines
	}
	if len(paragraphs) == 0 {
		return errors.New("no paragraphs to score")
	}

	result, err := scorer.Execute(cmd.Context(), executor.Request{
		Paragraphs: paragraphs,
		QueryIndex: scoreQuery,
		Limit:      scoreLimit,
		Ranked:     scoreRanked,
	})
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	if scoreJSON {
		return outputScoreJSON(cmd, result)
	}
	return outputScoreTable(cmd, paragraphs, result)
}

func outputScoreJSON(cmd *cobra.Command, result *executor.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputScoreTable(cmd *cobra.Command, paragraphs []string, result *executor.Result) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "query [%d]: %s\n", result.QueryIndex, paragraphs[result.QueryIndex])
	fmt.Fprintf(out, "vocabulary: %s\n\n", strings.Join(result.Vocabulary, " "))
	if len(result.Results) == 0 {
		fmt.Fprintln(out, "No candidates.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSCORE\tPARAGRAPH")
	for _, e := range result.Results {
		fmt.Fprintf(tw, "%d\t%.6f\t%s\n", e.Index, e.Score, paragraphs[e.Index])
	}
	return tw.Flush()
}

func readParagraphFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	lines, err := readParagraphs(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func readParagraphs(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
