package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/log"
	"github.com/Digital-Shane/bangumi-tidy/internal/tui/progress"
	"github.com/Digital-Shane/bangumi-tidy/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user quits the progress screen.
var ErrCancelled = errors.New("scan cancelled")

func (g *globalOptions) newLogger(cmd *cobra.Command) *logrus.Logger {
	return log.NewLogger(log.Options{
		Verbose: g.verbose,
		Quiet:   g.quiet,
		File:    g.logFile,
		Out:     cmd.ErrOrStderr(),
	})
}

// registry loads --config, or the default document when the flag is unset.
func (g *globalOptions) registry() (*config.Registry, error) {
	if g.config != "" {
		return config.Load(g.config)
	}
	return config.LoadDefault()
}

// terminal returns w as a file when it is an interactive terminal.
func terminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return nil, false
	}
	return f, isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLibrary loads the registry and runs the pipeline over dir. When stderr
// is a terminal the progress screen is shown; otherwise progress goes to the
// logger at debug level.
func parseLibrary(cmd *cobra.Command, g *globalOptions, logger *logrus.Logger, dir string, workers int) (*core.ParseResult, core.Library, error) {
	reg, err := g.registry()
	if err != nil {
		return nil, core.Library{}, err
	}

	if f, ok := terminal(cmd.ErrOrStderr()); ok && !g.quiet && !g.verbose {
		return parseWithProgress(f, g, dir, reg, workers)
	}

	opts := core.ParseOptions{
		Workers: workers,
		Logger:  logger,
		OnScan: func(d string, n int) {
			logger.WithField("files", n).Debugf("scanned %s", d)
		},
	}
	res, lib, err := core.ParseAndMerge(cmd.Context(), dir, reg, opts)
	if err != nil {
		return nil, core.Library{}, err
	}
	logger.Infof("scanned %d files: %d series, %d unresolved", res.Files, len(res.Series), res.Unresolved())
	return res, lib, nil
}

func parseWithProgress(out *os.File, g *globalOptions, dir string, reg *config.Registry, workers int) (*core.ParseResult, core.Library, error) {
	// Log lines would tear the alternate screen; warnings are kept on the
	// result and printed with the report.
	quiet := log.Discard()
	if g.logFile != "" {
		quiet = log.NewLogger(log.Options{File: g.logFile})
	}

	run := func(ctx context.Context, opts core.ParseOptions) (*core.ParseResult, core.Library, error) {
		opts.Workers, opts.Logger = workers, quiet
		return core.ParseAndMerge(ctx, dir, reg, opts)
	}

	model := progress.NewScanProgressModel(dir, run, theme.Default())
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, core.Library{}, fmt.Errorf("progress screen failed: %w", err)
	}
	m, ok := final.(*progress.ScanProgressModel)
	if !ok {
		return nil, core.Library{}, fmt.Errorf("unexpected model type %T after scanning", final)
	}
	if errors.Is(m.Err(), context.Canceled) {
		return nil, core.Library{}, ErrCancelled
	}
	if m.Err() != nil {
		return nil, core.Library{}, m.Err()
	}
	return m.Result(), m.Library(), nil
}
