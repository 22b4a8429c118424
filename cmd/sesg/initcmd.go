// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/demetrius-mp/sesg/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a review and an experiment to run strings under",
	Long: `Init records a systematic review (with optional publication-year
boundaries) and an experiment belonging to it. An existing review is
reused, so running init again with a new --experiment adds another
experiment to the same review.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reviewName, _ := cmd.Flags().GetString("review")
	experimentName, _ := cmd.Flags().GetString("experiment")
	if reviewName == "" || experimentName == "" {
		return fmt.Errorf("--review and --experiment are required")
	}
	minYear, _ := cmd.Flags().GetInt("min-year")
	maxYear, _ := cmd.Flags().GetInt("max-year")

	s, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer s.Close()

	review, err := s.ReviewByName(ctx, reviewName)
	if errors.Is(err, store.ErrNotFound) {
		review, err = s.CreateReview(ctx, reviewName, minYear, maxYear)
	}
	if err != nil {
		return err
	}

	experiment, err := s.CreateExperiment(ctx, review.ID, experimentName)
	if err != nil {
		return err
	}

	fmt.Printf("Review %q (id %d), experiment %q (id %d) ready.\n",
		review.Name, review.ID, experiment.Name, experiment.ID)
	return nil
}

func init() {
	initCmd.Flags().String("review", "", "review name (required)")
	initCmd.Flags().String("experiment", "", "experiment name (required)")
	initCmd.Flags().Int("min-year", 0, "lower publication-year boundary, exclusive (0 = unbounded)")
	initCmd.Flags().Int("max-year", 0, "upper publication-year boundary, exclusive (0 = unbounded)")

	rootCmd.AddCommand(initCmd)
}
