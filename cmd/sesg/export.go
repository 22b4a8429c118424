// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/demetrius-mp/sesg/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a review's experiments, strings, and titles as YAML",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	reviewName, _ := cmd.Flags().GetString("review")
	if reviewName == "" {
		return fmt.Errorf("--review is required")
	}

	s, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer s.Close()

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return s.ExportYAML(cmd.Context(), reviewName, out)
}

func init() {
	exportCmd.Flags().String("review", "", "review name (required)")
	exportCmd.Flags().String("output", "", "write to a file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
