package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oukeidos/vidlens/internal/collector"
	"github.com/oukeidos/vidlens/internal/files"
	"github.com/oukeidos/vidlens/internal/logger"
	"github.com/oukeidos/vidlens/internal/panel"
	"github.com/oukeidos/vidlens/internal/report"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	maxVideos int64
	output    string
	jsonOut   bool
	yes       bool
	debug     bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <channel>",
		Short: "Analyze a YouTube channel and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				_ = cmd.Usage()
				return fmt.Errorf("a channel URL, handle, or ID is required")
			}
			return runAnalyze(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addAnalyzeFlags(cmd, &opts)
	return cmd
}

func addAnalyzeFlags(cmd *cobra.Command, opts *analyzeOptions) {
	cmd.Flags().Int64Var(&opts.maxVideos, "max-videos", collector.DefaultMaxVideos, "Number of recent uploads to examine (1-50)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Emit the raw analysis payload as JSON instead of the report")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite the output file without renaming")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	if len(args) < 1 {
		return fmt.Errorf("a channel URL, handle, or ID is required")
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Warning: expected 1 argument but got %d. Using channel: %s\n", len(args), args[0])
	}

	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	logger.Init(logLevel, nil)

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	_, youtubeKeys, _, _ := store.StoredCredentials()
	if len(youtubeKeys) == 0 {
		return fmt.Errorf("no YouTube API key configured; run 'vidlens test --provider youtube' first")
	}

	ctx, stop := signalContext()
	defer stop()

	client, err := newYouTubeClient(ctx, youtubeKeys[0])
	if err != nil {
		return err
	}

	coll := collector.New(client,
		collector.WithMaxVideos(opts.maxVideos),
		collector.WithProgress(func(ev panel.ProgressEvent) {
			line := ev.Message
			if ev.CurrentItem != "" {
				line = ev.CurrentItem
			}
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", ev.Percent, line)
		}),
	)

	payload, err := coll.Run(ctx, args[0])
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Analysis canceled", "error", err)
			return nil
		}
		return err
	}

	var rendered []byte
	if opts.jsonOut {
		rendered, err = json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		rendered = append(rendered, '\n')
	} else {
		rendered = []byte(report.Format(payload) + "\n")
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(rendered)
		return err
	}
	return writeReportFile(cmd, opts.output, rendered, opts.yes)
}

// writeReportFile saves the report atomically. Without --yes an existing
// file is left alone and a numbered sibling is written instead.
func writeReportFile(cmd *cobra.Command, path string, data []byte, overwrite bool) error {
	if err := files.RejectSymlinkPath(path); err != nil {
		return err
	}
	target := path
	if !overwrite {
		safe, renamed, err := files.SafePath(path)
		if err != nil {
			return err
		}
		if renamed {
			fmt.Fprintf(os.Stderr, "Output exists; writing to %s instead (use --yes to overwrite)\n", safe)
		}
		target = safe
	}
	if err := files.AtomicWrite(target, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved: %s\n", target)
	return nil
}
