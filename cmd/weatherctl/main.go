// Command weatherctl answers weather questions from the terminal, either one
// at a time (ask) or interactively (repl).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"weatherassistant/internal/assistant"
	"weatherassistant/internal/config"
	"weatherassistant/internal/external"
	"weatherassistant/internal/telemetry"
)

// errUnanswered signals that the assistant replied with a failure message.
// The message has already been printed, so only the exit code changes.
var errUnanswered = errors.New("query was not answered")

func main() {
	var level slog.LevelVar
	level.Set(slog.LevelWarn)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(logger, &level).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errUnanswered):
		os.Exit(2)
	default:
		logger.Error("weatherctl failed", "error", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	envFile string
	output  string
	verbose bool
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "weatherctl",
		Short:         "Ask a weather assistant about current conditions and tomorrow's forecast",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
			if _, err := parseOutputFormat(opts.output); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", string(formatText), "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAskCmd(logger, opts),
		newReplCmd(logger, opts),
	)
	return root
}

// assistantSession bundles what a subcommand needs to answer queries.
type assistantSession struct {
	cfg      *config.Config
	pipeline *assistant.Pipeline
}

// newAssistantSession loads configuration and wires the pipeline the same way
// the API does.
func newAssistantSession(ctx context.Context, logger *slog.Logger, opts *globalOptions) (*assistantSession, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	metrics, err := telemetry.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating metrics collector: %w", err)
	}

	registry := external.NewClientRegistry(cfg, logger)
	pipeline := assistant.New(registry.Weather,
		assistant.WithLogger(logger),
		assistant.WithRecorder(metrics),
	)

	return &assistantSession{cfg: cfg, pipeline: pipeline}, nil
}
