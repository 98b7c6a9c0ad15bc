package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// exitWords end an interactive session.
var exitWords = map[string]bool{"quit": true, "exit": true, "bye": true}

func newReplCmd(logger *slog.Logger, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat with the assistant interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newAssistantSession(cmd.Context(), logger, opts)
			if err != nil {
				return err
			}

			format, _ := parseOutputFormat(opts.output)
			return runRepl(cmd, sess, format)
		},
	}
}

// runRepl reads one question per line until EOF, an exit word or a
// cancelled context. Blank lines are ignored.
func runRepl(cmd *cobra.Command, sess *assistantSession, format outputFormat) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	name := sess.cfg.Assistant.Name

	fmt.Fprintf(out, "%s: %s\n", name, sess.cfg.Assistant.Greeting)
	fmt.Fprintln(out, `Type "quit" to leave.`)

	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}

		line := strings.TrimSpace(in.Text())
		switch {
		case line == "":
			continue
		case exitWords[strings.ToLower(line)]:
			fmt.Fprintf(out, "%s: Goodbye!\n", name)
			return nil
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}

		resp := sess.pipeline.Handle(cmd.Context(), line)
		if format == formatText {
			if _, err := fmt.Fprintf(out, "%s: %s\n", name, resp.Text); err != nil {
				return err
			}
			continue
		}
		if err := writeResponse(out, format, resp); err != nil {
			return err
		}
	}
}
