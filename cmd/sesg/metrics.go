// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/demetrius-mp/sesg/internal/evaluation"
	"github.com/demetrius-mp/sesg/internal/store"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Score an experiment's search strings against a gold standard",
	Long: `Metrics evaluates every completed search string of an experiment
against a gold standard, the YAML list of study titles the review is
known to include:

    titles:
      - A systematic review of code smell detection
      - Technical debt in practice

For each string it reports how many gold-standard studies the retrieved
titles contain (fuzzy-matched, so punctuation and casing differences are
tolerated) and the resulting precision, recall, and F1 score.`,
	RunE: runMetrics,
}

// goldFile is the YAML shape of a gold-standard input file.
type goldFile struct {
	Titles []string `yaml:"titles"`
}

func runMetrics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reviewName, _ := cmd.Flags().GetString("review")
	experimentName, _ := cmd.Flags().GetString("experiment")
	goldPath, _ := cmd.Flags().GetString("gold")
	if reviewName == "" || experimentName == "" || goldPath == "" {
		return fmt.Errorf("--review, --experiment, and --gold are required")
	}

	data, err := os.ReadFile(goldPath)
	if err != nil {
		return fmt.Errorf("reading gold standard: %w", err)
	}
	var gf goldFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return fmt.Errorf("parsing gold standard: %w", err)
	}
	if len(gf.Titles) == 0 {
		return fmt.Errorf("gold standard %s has no titles", goldPath)
	}

	s, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer s.Close()

	review, err := s.ReviewByName(ctx, reviewName)
	if err != nil {
		return err
	}
	experiment, err := s.ExperimentByName(ctx, review.ID, experimentName)
	if err != nil {
		return err
	}

	strategy, _ := cmd.Flags().GetString("strategy")
	completed, err := s.CompletedResults(ctx, experiment.ID, strategy)
	if err != nil {
		return err
	}
	if len(completed) == 0 {
		fmt.Fprintln(os.Stderr, "No completed search strings to evaluate.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-50s  %8s  %5s  %9s  %6s  %6s\n",
		"ID", "String", "Results", "In GS", "Precision", "Recall", "F1")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 102))

	best := -1.0
	var bestID int64
	for _, cr := range completed {
		m := evaluation.Score(gf.Titles, cr.Titles, cr.TotalResults)

		str := cr.SearchString.String
		if len(str) > 50 {
			str = str[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-50s  %8d  %5d  %9.4f  %6.4f  %6.4f\n",
			cr.SearchString.ID, str, m.ScopusResults, m.GSStudiesInScopus,
			m.Precision(), m.Recall(), m.F1Score())

		if f1 := m.F1Score(); f1 > best {
			best, bestID = f1, cr.SearchString.ID
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d strings evaluated against %d gold-standard studies; best F1 %.4f (string %d)\n",
		len(completed), len(gf.Titles), best, bestID)
	return nil
}

func init() {
	metricsCmd.Flags().String("review", "", "review name (required)")
	metricsCmd.Flags().String("experiment", "", "experiment name (required)")
	metricsCmd.Flags().String("strategy", "", "only evaluate strings generated by this strategy")
	metricsCmd.Flags().String("gold", "", "gold standard YAML file (required)")

	rootCmd.AddCommand(metricsCmd)
}
