package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/export"
	"github.com/Digital-Shane/bangumi-tidy/internal/log"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newUndoCommand(g *globalOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "undo [session-id]",
		Short: "Revert the links and directories created by a link run",
		Long: `Revert a recorded link session: links are removed when they still point at
their source, directories when they are empty. Without an id the most recent
session is reverted; an id prefix selects an older one. Use --list to see the
recorded sessions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runUndoList(cmd)
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return runUndo(cmd, g, prefix)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List recorded sessions instead of reverting one")
	return cmd
}

func runUndoList(cmd *cobra.Command) error {
	summaries, err := log.GetSessionSummaries()
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No sessions found to undo.")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		meta := s.Session.Metadata
		rows = append(rows, []string{
			shortID(meta.SessionID),
			s.RelativeTime,
			strings.Join(meta.CommandArgs, " "),
			strconv.Itoa(meta.SuccessfulOps),
			strconv.Itoa(meta.FailedOps),
		})
	}
	fmt.Fprintln(out, export.RenderTable(
		[]string{"Session", "When", "Command", "Done", "Failed"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignRight},
	))
	return nil
}

func runUndo(cmd *cobra.Command, g *globalOptions, prefix string) error {
	logger := g.newLogger(cmd)

	session, path, err := log.FindSession(prefix)
	if err != nil {
		return err
	}

	successful, failed, errs := log.UndoSession(session)
	for _, e := range errs {
		logger.Warn(e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s: %d operation%s reverted, %d failed\n",
		shortID(session.Metadata.SessionID), successful, plural(successful), failed)

	if failed > 0 {
		return fmt.Errorf("%d operation%s could not be reverted: %w", failed, plural(failed), errors.Join(errs...))
	}
	// A reverted session must not be picked up as the latest one again.
	if err := os.Remove(path); err != nil {
		logger.Warnf("failed to remove session log %s: %v", path, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
