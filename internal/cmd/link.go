package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/log"
	"github.com/spf13/cobra"
)

const logRetentionDays = 30

type linkOptions struct {
	mode    string
	dryRun  bool
	noLog   bool
	workers int
}

func newLinkCommand(g *globalOptions) *cobra.Command {
	o := &linkOptions{}
	cmd := &cobra.Command{
		Use:   "link <dir> <target>",
		Short: "Mirror the library into a Season NN layout of links",
		Long: `Scan dir, merge seasons into shows and create
<target>/<Show>/Season NN/<Show> - SxxEyy.<ext> for every identified episode.
Unresolved files are left out. Source files are never moved or modified.

Every directory and link created is recorded in a session log so the run can
be reverted with "bangumi-tidy undo".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, g, o, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&o.mode, "mode", "auto", "Link type: auto (hard, symlink on failure), hard or soft")
	cmd.Flags().BoolVarP(&o.dryRun, "dry-run", "n", false, "Print the planned layout without creating anything")
	cmd.Flags().BoolVar(&o.noLog, "no-log", false, "Do not record a session log")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "Extraction workers (default number of CPUs)")
	return cmd
}

func runLink(cmd *cobra.Command, g *globalOptions, o *linkOptions, dir, target string) error {
	mode, err := core.ParseLinkMode(o.mode)
	if err != nil {
		return err
	}

	if err := checkTargetOutside(dir, target); err != nil {
		return err
	}

	logger := g.newLogger(cmd)
	_, lib, err := parseLibrary(cmd, g, logger, dir, o.workers)
	if err != nil {
		return err
	}

	plan, err := core.PlanMirror(target, core.ShowsFromLibrary(lib))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.dryRun {
		printPlan(cmd, out, plan)
		return nil
	}

	if err := log.Initialize(!o.noLog, logRetentionDays); err != nil {
		logger.Warnf("session log cleanup failed: %v", err)
	}
	if err := log.StartSession("link", cmd.Flags().Args()); err != nil {
		logger.Warnf("session log disabled: %v", err)
	}

	mirror := &core.Mirror{Mode: mode, Logger: logger}
	summary, execErr := mirror.Execute(cmd.Context(), plan)

	sessionPath, err := log.EndSession()
	if err != nil {
		logger.Warnf("failed to save session log: %v", err)
	}

	if execErr != nil {
		return execErr
	}

	fmt.Fprintf(out, "Linked %d episode%s into %s: %d created, %d already present, %d failed, %d skipped\n",
		plan.Links, plural(plan.Links), plan.Target, summary.Created, summary.Existing, summary.Failed, summary.Skipped)
	if sessionPath != "" {
		fmt.Fprintf(out, "Session log: %s (revert with bangumi-tidy undo)\n", sessionPath)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d link%s failed: %w", summary.Failed, plural(summary.Failed), errors.Join(summary.Errors...))
	}
	return nil
}

// printPlan lists the plan depth first as an indented tree.
func printPlan(cmd *cobra.Command, w io.Writer, plan *core.MirrorPlan) {
	fmt.Fprintf(w, "%s (%d link%s)\n", plan.Target, plan.Links, plural(plan.Links))
	for ni := range plan.Tree.All(cmd.Context()) {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", ni.Depth+1), ni.Node.Name())
	}
}

// checkTargetOutside rejects a target inside the scanned directory, since a
// second run would pick the links up as new episodes.
func checkTargetOutside(dir, target string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("link target %s is inside the scanned directory %s", target, dir)
	}
	return nil
}
