package core

import (
	"fmt"
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// SanitizeFilename replaces characters that are invalid on common filesystems
// with a space, collapses runs of spaces and drops trailing dots.
func SanitizeFilename(name string) (string, error) {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || r == ' ' || r == '　' || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimRight(strings.TrimSpace(b.String()), ". ")
	if result == "" || result == ".." {
		return "", fmt.Errorf("name %q is empty after sanitization", name)
	}
	return result, nil
}

// seasonDirName is the directory a season is mirrored into.
func seasonDirName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// episodeFileName is the mirrored name of an episode, e.g. "Show - S01E02.mkv".
func episodeFileName(series string, key EpisodeKey, ext string) string {
	return fmt.Sprintf("%s - S%02dE%s%s", series, key.Season, key.Episode, ext)
}
