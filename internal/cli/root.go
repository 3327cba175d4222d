// Package cli implements the tfidf command line tool.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/logger"
)

// version is overridden at build time via -ldflags "-X".
var version = "dev"

var (
	stemmerName string
	logLevel    string

	scorer *executor.Executor
)

var rootCmd = &cobra.Command{
	Use:   "tfidf",
	Short: "Score paragraphs against each other with TF-IDF",
	Long: `tfidf tokenizes a set of paragraphs and scores every paragraph
against a chosen query paragraph using double-normalized term frequency
and smoothed inverse document frequency.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stemmerName, "stemmer", "porter2", "stemmer to apply to terms (porter2|none)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logger.New(cmd.ErrOrStderr(), logLevel, "text"))

	cfg := config.Default().Scoring
	cfg.Stemmer = stemmerName
	exec, err := executor.New(cfg, nil, logLevel == "debug")
	if err != nil {
		return fmt.Errorf("invalid --stemmer: %w", err)
	}
	scorer = exec
	return nil
}
