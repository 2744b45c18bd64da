package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/mattn/go-runewidth"
)

const (
	maxNameWidth    = 40
	previewEpisodes = 5
)

// writeReport prints one block per series: name, group and episode preview on
// the first line, details indented below. Names are padded by display width so
// CJK titles line up.
func writeReport(w io.Writer, res *core.ParseResult) {
	fmt.Fprintf(w, "Found %d series, %d video files, %d unresolved in %s\n",
		len(res.Series), res.Files, res.Unresolved(), res.Root)

	width := nameColumnWidth(res.Series)
	for _, r := range res.Series {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  %-12s %3d episodes  %s\n",
			padName(r.Name, width), groupLabel(r.ReleaseGroup), r.EpisodeCount(), episodePreview(r.EpisodeKeys()))
		fmt.Fprintf(w, "  dir:        %s\n", r.Dir)
		if r.Season > 0 {
			fmt.Fprintf(w, "  season:     %d\n", r.Season)
		}
		if len(r.Tags) > 0 {
			fmt.Fprintf(w, "  tags:       %s\n", strings.Join(r.Tags, ", "))
		}
		if r.SampleFile != "" {
			fmt.Fprintf(w, "  sample:     %s\n", filepath.Base(r.SampleFile))
		}
		if r.Pattern != "" {
			fmt.Fprintf(w, "  pattern:    %s\n", r.Pattern)
		}
		for _, u := range r.Unresolved {
			fmt.Fprintf(w, "  unresolved: %s\n", filepath.Base(u))
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning:    %s\n", warning)
		}
	}
	writeScanWarnings(w, res)
}

// writeLibraryReport prints merged shows with their seasons, then the shows
// whose seasons could not be merged.
func writeLibraryReport(w io.Writer, res *core.ParseResult, lib core.Library) {
	fmt.Fprintf(w, "Found %d shows, %d video files, %d unresolved in %s\n",
		len(lib.Shows)+len(lib.Unmerged), res.Files, res.Unresolved(), res.Root)

	names := make([]string, 0, len(lib.Shows))
	for _, s := range lib.Shows {
		names = append(names, s.Name)
	}
	width := min(maxWidth(names), maxNameWidth)

	for _, show := range lib.Shows {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  %d season%s  %3d episodes  %s\n",
			padName(show.Name, width), len(show.Seasons), plural(len(show.Seasons)), show.EpisodeCount(),
			groupLabel(strings.Join(show.ReleaseGroups, ", ")))
		for _, season := range show.Seasons {
			fmt.Fprintf(w, "  S%02d  %3d episodes  %s\n", season.Number, season.Record.EpisodeCount(), season.Record.Dir)
		}
	}

	for _, u := range lib.Unmerged {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  not merged: %v\n", u.Name, u.Conflict)
		for _, r := range u.Seasons {
			fmt.Fprintf(w, "  %3d episodes  %s\n", r.EpisodeCount(), r.Dir)
		}
	}
	writeScanWarnings(w, res)
}

func writeScanWarnings(w io.Writer, res *core.ParseResult) {
	if len(res.Warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func nameColumnWidth(records []core.SeriesRecord) int {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return min(maxWidth(names), maxNameWidth)
}

func maxWidth(names []string) int {
	width := 0
	for _, n := range names {
		width = max(width, runewidth.StringWidth(n))
	}
	return width
}

func padName(name string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(name, width, "…"), width)
}

func groupLabel(group string) string {
	if group == "" {
		return "-"
	}
	return "[" + group + "]"
}

// episodePreview lists the first few episode keys.
func episodePreview(keys []string) string {
	if len(keys) <= previewEpisodes {
		return strings.Join(keys, " ")
	}
	return strings.Join(keys[:previewEpisodes], " ") + " …"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
