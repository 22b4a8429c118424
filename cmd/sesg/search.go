// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/demetrius-mp/sesg/internal/scopus"
	"github.com/demetrius-mp/sesg/internal/searchstring"
	"github.com/demetrius-mp/sesg/internal/secrets"
	"github.com/demetrius-mp/sesg/internal/store"
	"github.com/demetrius-mp/sesg/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run pending search strings against the Scopus API",
	Long: `Search submits an experiment's pending search strings to the Scopus
Search API and records the retrieved titles. Strings that already have a
stored result are skipped, so an interrupted batch resumes where it
stopped.

Each string is wrapped in TITLE-ABS-KEY() and bounded by the review's
publication years before submission. A string Scopus rejects as invalid
is recorded as empty and the batch continues; running out of API keys
stops the batch.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd)

	reviewName, _ := cmd.Flags().GetString("review")
	experimentName, _ := cmd.Flags().GetString("experiment")
	strategy, _ := cmd.Flags().GetString("strategy")
	if reviewName == "" || experimentName == "" {
		return fmt.Errorf("--review and --experiment are required")
	}

	maxConcurrency, _ := cmd.Flags().GetInt("max-concurrency")
	client, err := scopusClient(cmd, maxConcurrency)
	if err != nil {
		return err
	}
	client.SetLogger(logger)

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

	pending, err := s.PendingSearchStrings(ctx, experiment.ID, strategy)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(os.Stderr, "No pending search strings.")
		return nil
	}
	logger.Info().Int("pending", len(pending)).Str("experiment", experimentName).
		Msg("starting search batch")

	for i, ss := range pending {
		query, err := searchstring.SetPubYearBoundaries(ss.String,
			review.MinPublicationYear, review.MaxPublicationYear)
		if err != nil {
			return err
		}
		query = searchstring.WrapTitleAbsKey(query)

		total, titles, err := collectTitles(ctx, client, query)
		switch {
		case errors.Is(err, scopus.ErrInvalidQuery):
			logger.Warn().Int64("string_id", ss.ID).Msg("query rejected as invalid; recording empty result")
			total, titles = 0, nil
		case err != nil:
			return fmt.Errorf("string %d of %d: %w", i+1, len(pending), err)
		}

		if err := s.SaveResultTitles(ctx, ss.ID, total, titles); err != nil {
			return err
		}
		logger.Info().Int("done", i+1).Int("of", len(pending)).
			Int("total_results", total).Int("titles", len(titles)).
			Int("keys_left", client.Pool().Len()).Msg("search string completed")
	}

	return nil
}

// collectTitles drains one search stream into a title list. It returns
// the total Scopus reported alongside the titles of every delivered page.
func collectTitles(ctx context.Context, client *scopus.Client, query string) (int, []string, error) {
	var total int
	var titles []string
	for r := range client.Search(ctx, query) {
		if r.Err != nil {
			return 0, nil, r.Err
		}
		total = r.Page.TotalResults
		for _, entry := range r.Page.Entries {
			titles = append(titles, entry.Title)
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	return total, titles, nil
}

// scopusClient builds a client from flags, config, and secrets. Keys come
// from --api-keys, then the SESG_SCOPUS_API_KEYS environment variable,
// then the .secrets/scopus-api-keys file. Only the api-keys flag is read
// here; search-specific settings like concurrency arrive as arguments so
// commands without those flags can share this.
func scopusClient(cmd *cobra.Command, maxConcurrency int) (*scopus.Client, error) {
	raw, _ := cmd.Flags().GetString("api-keys")
	if raw == "" {
		raw = viper.GetString("scopus.api_keys")
	}
	if raw == "" {
		raw = loadedSecrets["scopus-api-keys"]
	}
	keys := secrets.Lines(strings.ReplaceAll(raw, ",", "\n"))
	if len(keys) == 0 {
		return nil, fmt.Errorf("no Scopus API keys: pass --api-keys, set SESG_SCOPUS_API_KEYS, or create .secrets/scopus-api-keys")
	}

	if maxConcurrency == 0 {
		maxConcurrency = viper.GetInt("scopus.max_concurrency")
	}

	cfg := types.ScopusConfig{
		APIKeys:        keys,
		MaxConcurrency: maxConcurrency,
		RetryAttempts:  viper.GetInt("scopus.retry_attempts"),
	}
	cfg.UserAgent = viper.GetString("scopus.user_agent")
	return scopus.New(cfg)
}

// newLogger builds the stderr console logger shared by subcommands.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func init() {
	searchCmd.Flags().String("review", "", "review name (required)")
	searchCmd.Flags().String("experiment", "", "experiment name (required)")
	searchCmd.Flags().String("strategy", "", "only run strings generated by this strategy")
	searchCmd.Flags().String("api-keys", "", "comma-separated Scopus API keys (default: .secrets/scopus-api-keys)")
	searchCmd.Flags().Int("max-concurrency", 0, "max in-flight page requests per string (0 = unbounded)")
	searchCmd.Flags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(searchCmd)
}
