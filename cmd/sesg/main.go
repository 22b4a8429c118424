// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sesg CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/demetrius-mp/sesg/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the sesg CLI.
var rootCmd = &cobra.Command{
	Use:   "sesg",
	Short: "Search-string generation experiments against the Scopus API",
	Long: `sesg runs search-string generation (SeSG) experiments for systematic
literature reviews. Generated search strings are stored per experiment,
submitted to the Scopus Search API with key rotation and concurrent
pagination, and the retrieved titles are recorded for later evaluation.

Each stage is a subcommand: init, string, search, keys, and export.
Interrupted search batches resume from the first string without a
stored result.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sesg.yaml or ~/.config/sesg/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database file (default: sesg.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sesg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sesg"))
		}
	}

	viper.SetDefault("store.path", "sesg.db")
	viper.SetDefault("scopus.max_concurrency", 0)
	viper.SetDefault("scopus.retry_attempts", 0)
	viper.SetDefault("scopus.user_agent", "sesg/"+version)

	viper.SetEnvPrefix("SESG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dbPath resolves the database file from the --db flag or config.
func dbPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("db"); p != "" {
		return p
	}
	return viper.GetString("store.path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
