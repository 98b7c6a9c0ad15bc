package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(logger *slog.Logger, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single weather question",
		Example: `  weatherctl ask "What's the weather in Paris?"
  weatherctl ask will it rain in London tomorrow -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newAssistantSession(cmd.Context(), logger, opts)
			if err != nil {
				return err
			}

			format, _ := parseOutputFormat(opts.output)
			resp := sess.pipeline.Handle(cmd.Context(), strings.Join(args, " "))
			if err := writeResponse(cmd.OutOrStdout(), format, resp); err != nil {
				return err
			}
			if !resp.Success {
				return errUnanswered
			}
			return nil
		},
	}
}
