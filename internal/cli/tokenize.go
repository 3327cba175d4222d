package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text]",
	Short: "Print the terms a paragraph tokenizes to",
	Long: `Splits text on spaces, commas and periods and stems every fragment.
Arguments are joined with a space; with no arguments stdin is read.`,
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = string(raw)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("no text to tokenize")
	}

	out := cmd.OutOrStdout()
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(out, strings.Join(scorer.Tokenize(line), " "))
	}
	return nil
}
