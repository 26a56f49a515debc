package main

import (
	"fmt"
	"io"

	"github.com/oukeidos/vidlens/internal/credstore"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured API credentials and readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runStatus(cmd *cobra.Command) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	out := cmd.OutOrStdout()
	status := store.GetAPIStatus()

	printProviderStatus(out, "YouTube API Keys", status.YouTube)
	printProviderStatus(out, "OpenAI API Keys", status.OpenAI)
	printProviderStatus(out, "Google Service Accounts", status.Google)

	if status.Leonardo.Configured {
		fmt.Fprintf(out, "Leonardo API Key: %s %s\n", checkmark(status.Leonardo.Valid), status.Leonardo.Message)
	} else {
		fmt.Fprintln(out, "Leonardo API Key: not configured")
	}

	_, reason := store.IsReadyForAnalysis()
	fmt.Fprintln(out)
	fmt.Fprintln(out, reason)
	return nil
}

func printProviderStatus(out io.Writer, label string, status credstore.ProviderStatus) {
	fmt.Fprintf(out, "%s: %d configured, %d valid\n", label, status.Configured, status.Valid)
	for _, key := range status.Keys {
		fmt.Fprintf(out, "  %s %s — %s\n", checkmark(key.Valid), key.Key, key.Message)
	}
}
