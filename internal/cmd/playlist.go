package cmd

import (
	"fmt"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/Digital-Shane/bangumi-tidy/internal/export"
	"github.com/spf13/cobra"
)

type playlistOptions struct {
	out     string
	merge   bool
	workers int
}

func newPlaylistCommand(g *globalOptions) *cobra.Command {
	o := &playlistOptions{}
	cmd := &cobra.Command{
		Use:   "playlist [dir] --out DIR",
		Short: "Write one M3U playlist per series",
		Long: `Scan dir and write an extended M3U playlist for every series into the --out
directory, episodes in numeric order. With --merge each show gets a single
playlist spanning all of its seasons.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylist(cmd, g, o, dirArg(args))
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Directory to write playlists into")
	cmd.Flags().BoolVarP(&o.merge, "merge", "m", false, "One playlist per show instead of per season directory")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "Extraction workers (default number of CPUs)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runPlaylist(cmd *cobra.Command, g *globalOptions, o *playlistOptions, dir string) error {
	logger := g.newLogger(cmd)
	res, lib, err := parseLibrary(cmd, g, logger, dir, o.workers)
	if err != nil {
		return err
	}

	var playlists []export.Playlist
	if o.merge {
		for _, show := range core.ShowsFromLibrary(lib) {
			playlists = append(playlists, export.Playlist{Name: show.Name, Entries: export.ShowPlaylist(show)})
		}
	} else {
		for _, r := range res.Series {
			playlists = append(playlists, export.Playlist{Name: playlistName(r), Entries: export.SeriesPlaylist(r)})
		}
	}

	written, err := export.WritePlaylists(o.out, playlists)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Debugf("wrote %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d playlist%s to %s\n", len(written), plural(len(written)), o.out)
	return nil
}

func playlistName(r core.SeriesRecord) string {
	if r.Season > 0 {
		return fmt.Sprintf("%s S%02d", r.Name, r.Season)
	}
	return r.Name
}
