package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	quiet   bool
	config  string
	logFile string
}

// NewRootCommand builds the bangumi-tidy command tree. Run without a
// subcommand it behaves like scan.
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}
	so := &scanOptions{}

	root := &cobra.Command{
		Use:   "bangumi-tidy [dir]",
		Short: "Catalog anime release folders by series, season and episode",
		Long: `bangumi-tidy scans a directory tree of fansub and web releases, works out the
series name, release group, quality tags and episode number of every video, and
reports what it found. Files it cannot place are listed as unresolved.

Results can be exported as JSON or CSV, turned into M3U playlists, or mirrored
into a Season NN layout of hard or symbolic links that media servers understand.
Nothing is ever written inside the scanned directory.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, so, dirArg(args))
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log every directory and extraction decision")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "Only log warnings and errors")
	pf.StringVarP(&g.config, "config", "c", "", "Registry document (JSON or TOML), default ~/.bangumi-tidy/config.json")
	pf.StringVar(&g.logFile, "log-file", "", "Write logs as JSON to this file with rotation")
	addScanFlags(root, so)

	root.AddCommand(
		newScanCommand(g),
		newPlaylistCommand(g),
		newLinkCommand(g),
		newUndoCommand(g),
		newConfigCommand(g),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
