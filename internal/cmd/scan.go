package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/export"
	"github.com/spf13/cobra"
)

const topTagCount = 10

type scanOptions struct {
	output  string
	format  string
	stats   bool
	merge   bool
	workers int
}

func addScanFlags(cmd *cobra.Command, o *scanOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", `Export results to this file ("-" for stdout) instead of printing a report`)
	f.StringVarP(&o.format, "format", "f", "", "Export format: json or csv (default from the output extension, else json)")
	f.BoolVarP(&o.stats, "stats", "s", false, "Print series, episode, release group and tag statistics")
	f.BoolVarP(&o.merge, "merge", "m", false, "Merge season directories of the same series into one show")
	f.IntVarP(&o.workers, "workers", "w", 0, "Extraction workers (default number of CPUs)")
}

func newScanCommand(g *globalOptions) *cobra.Command {
	o := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory and report the series found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, o, dirArg(args))
		},
	}
	addScanFlags(cmd, o)
	return cmd
}

func runScan(cmd *cobra.Command, g *globalOptions, o *scanOptions, dir string) error {
	format, err := exportFormat(o.format, o.output)
	if err != nil {
		return err
	}

	logger := g.newLogger(cmd)
	res, lib, err := parseLibrary(cmd, g, logger, dir, o.workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case o.output != "":
		if format == "csv" && o.merge {
			logger.Warn("--merge has no effect on CSV exports")
		}
		if err := writeExport(out, o.output, format, o.merge, res, lib); err != nil {
			return err
		}
		if o.output != "-" {
			logger.Infof("wrote %s", o.output)
		}
	case o.merge:
		writeLibraryReport(out, res, lib)
	default:
		writeReport(out, res)
	}

	if o.stats {
		fmt.Fprintln(out, export.RenderStats(export.ComputeStats(res.Series), topTagCount))
	}
	return nil
}

// exportFormat resolves --format, falling back to the output extension.
func exportFormat(format, output string) (string, error) {
	format = strings.ToLower(format)
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), ".csv") {
			return "csv", nil
		}
		return "json", nil
	}
	if format != "json" && format != "csv" {
		return "", fmt.Errorf("unknown export format %q (want json or csv)", format)
	}
	return format, nil
}

func writeExport(stdout io.Writer, output, format string, merge bool, res *core.ParseResult, lib core.Library) error {
	w := stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch {
	case format == "csv":
		err = export.WriteCSV(w, res.Series)
	case merge:
		err = export.WriteLibraryJSON(w, lib)
	default:
		err = export.WriteSeriesJSON(w, res.Series)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", output, err)
	}
	if f, ok := w.(*os.File); ok && output != "-" {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	}
	return nil
}
