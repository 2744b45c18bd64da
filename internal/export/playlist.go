package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
)

// PlaylistEntry is one line of an M3U playlist.
type PlaylistEntry struct {
	Title string
	Path  string
}

// SeriesPlaylist lists the episodes of r in numeric order.
func SeriesPlaylist(r core.SeriesRecord) []PlaylistEntry {
	entries := make([]PlaylistEntry, 0, len(r.Episodes))
	for _, ep := range r.EpisodeKeys() {
		entries = append(entries, PlaylistEntry{Title: fmt.Sprintf("%s - %s", r.Name, ep), Path: r.Episodes[ep]})
	}
	return entries
}

// ShowPlaylist lists the episodes of a merged show by season, then episode.
func ShowPlaylist(show core.BangumiRecord) []PlaylistEntry {
	entries := make([]PlaylistEntry, 0, len(show.Episodes))
	for _, key := range show.Keys() {
		entries = append(entries, PlaylistEntry{Title: fmt.Sprintf("%s - %s", show.Name, EpisodeLabel(key)), Path: show.Episodes[key]})
	}
	return entries
}

// WriteM3U writes an extended M3U playlist.
func WriteM3U(w io.Writer, entries []PlaylistEntry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#EXTM3U")
	for _, e := range entries {
		fmt.Fprintf(bw, "#EXTINF:-1,%s\n%s\n", e.Title, e.Path)
	}
	return bw.Flush()
}

// Playlist is a named list of entries; Name becomes the file name.
type Playlist struct {
	Name    string
	Entries []PlaylistEntry
}

// WritePlaylists writes one <name>.m3u per playlist into dir and returns the
// files written. Names are sanitized; a name already written gets the first
// free " (n)" suffix.
// Playlists without entries are skipped.
func WritePlaylists(dir string, playlists []Playlist) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create playlist directory: %w", err)
	}

	used := make(map[string]bool)
	var written []string
	for _, p := range playlists {
		if len(p.Entries) == 0 {
			continue
		}
		base, err := core.SanitizeFilename(p.Name)
		if err != nil {
			base = "playlist"
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		used[name] = true

		path := filepath.Join(dir, name+".m3u")
		if err := writePlaylistFile(path, p.Entries); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writePlaylistFile(path string, entries []PlaylistEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist %s: %w", path, err)
	}
	if err := WriteM3U(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("failed to write playlist %s: %w", path, err)
	}
	return f.Close()
}
