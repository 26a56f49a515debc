package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/vidlens/internal/credstore"
	"github.com/spf13/cobra"
)

type testOptions struct {
	provider string
}

func newTestCmd() *cobra.Command {
	opts := testOptions{}
	cmd := &cobra.Command{
		Use:   "test [credential-file]",
		Short: "Validate an API credential and save it on success",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, args, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.provider, "provider", "openai", "Provider to test (openai, youtube, leonardo, or google)")
	return cmd
}

func runTest(cmd *cobra.Command, args []string, opts *testOptions) error {
	provider := strings.ToLower(opts.provider)
	switch provider {
	case "openai", "youtube", "leonardo", "google":
	default:
		return fmt.Errorf("invalid provider. Must be 'openai', 'youtube', 'leonardo', or 'google'")
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if provider == "google" {
		if len(args) == 0 {
			return fmt.Errorf("a service-account JSON file is required for --provider google")
		}
		return reportTest(cmd, store, func() (bool, string) {
			valid, message := store.TestGoogleCredentials(args[0])
			if valid {
				store.AddGoogleCredential(args[0])
			}
			return valid, message
		})
	}
	if len(args) > 0 {
		return fmt.Errorf("keys are never accepted as arguments; %s prompts for the key", cmd.CommandPath())
	}
	if !isTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no terminal available to prompt for the key")
	}

	promptKey, err := promptForKey(fmt.Sprintf("%s API Key: ", providerLabel(provider)))
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key := strings.TrimSpace(promptKey)
	if key == "" {
		return fmt.Errorf("API key is required")
	}

	ctx, stop := signalContext()
	defer stop()

	return reportTest(cmd, store, func() (bool, string) {
		var valid bool
		var message string
		switch provider {
		case "openai":
			valid, message = store.TestOpenAIAPI(ctx, key)
			if valid {
				store.AddOpenAIKey(key)
			}
		case "youtube":
			valid, message = store.TestYouTubeAPI(ctx, key)
			if valid {
				store.AddYouTubeKey(key)
			}
		case "leonardo":
			valid, message = store.TestLeonardoAPI(ctx, key)
			if valid {
				store.SetLeonardoKey(key)
			}
		}
		return valid, message
	})
}

func reportTest(cmd *cobra.Command, store *credstore.Store, run func() (bool, string)) error {
	valid, message := run()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkmark(valid), message)
	if !valid {
		return fmt.Errorf("credential test failed")
	}
	if err := store.SaveConfig(); err != nil {
		return fmt.Errorf("credential is valid but saving failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved to settings.")
	return nil
}

func providerLabel(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "youtube":
		return "YouTube"
	case "leonardo":
		return "Leonardo"
	default:
		return provider
	}
}
