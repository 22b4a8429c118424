// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the Scopus API key pool",
}

var keysCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every API key and report the expired ones",
	Long: `Check sends one lightweight request per configured API key and reports
which keys answered with a quota rejection. Each probe spends one request
of the key's weekly budget.

With --purge, expired keys are also removed from the pool for the rest
of this invocation, which is mainly useful before scripted batches.`,
	RunE: runKeysCheck,
}

func runKeysCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := scopusClient(cmd, 0)
	if err != nil {
		return err
	}
	client.SetLogger(newLogger(cmd))

	purge, _ := cmd.Flags().GetBool("purge")

	var expired []string
	if purge {
		expired, err = client.PurgeExpiredKeys(ctx)
	} else {
		expired, err = client.ExpiredKeys(ctx)
	}
	if err != nil {
		return err
	}

	total := client.Pool().Len()
	if purge {
		total += len(expired) // pool already shrank
	}
	if len(expired) == 0 {
		fmt.Printf("All %d API keys have quota left.\n", total)
		return nil
	}

	fmt.Printf("%d of %d API keys are expired:\n", len(expired), total)
	for _, key := range expired {
		fmt.Printf("  %s\n", redact(key))
	}
	return nil
}

// redact keeps enough of a key to identify it in a keys file without
// printing the whole credential.
func redact(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	keysCheckCmd.Flags().Bool("purge", false, "remove expired keys from the pool")
	keysCheckCmd.Flags().String("api-keys", "", "comma-separated Scopus API keys (default: .secrets/scopus-api-keys)")
	keysCheckCmd.Flags().Bool("verbose", false, "enable debug logging")

	keysCmd.AddCommand(keysCheckCmd)
	rootCmd.AddCommand(keysCmd)
}
