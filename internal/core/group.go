package core

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Digital-Shane/bangumi-tidy/internal/media"
	"golang.org/x/text/width"
)

// Group is the set of media files sharing a parent directory.
type Group struct {
	Dir   string
	Files []media.MediaFile
}

// Stems returns the filename stems of the group.
func (g Group) Stems() []string {
	stems := make([]string, len(g.Files))
	for i, f := range g.Files {
		stems[i] = f.Stem()
	}
	return stems
}

// GroupByDirectory partitions files by parent directory. Groups are sorted by
// directory and files within a group by name, so the result does not depend on
// the order files were found in.
func GroupByDirectory(files []media.MediaFile) []Group {
	byDir := make(map[string][]media.MediaFile)
	for _, f := range files {
		byDir[f.Dir] = append(byDir[f.Dir], f)
	}

	groups := make([]Group, 0, len(byDir))
	for dir, fs := range byDir {
		sort.Slice(fs, func(i, j int) bool {
			if fs[i].Name() != fs[j].Name() {
				return fs[i].Name() < fs[j].Name()
			}
			return fs[i].Path < fs[j].Path
		})
		groups = append(groups, Group{Dir: dir, Files: fs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	return groups
}

var (
	closingBrackets = map[rune]rune{']': '[', ')': '(', '】': '【', '』': '『', '}': '{', '」': '「'}

	// trailingEpisodeRe matches an episode token left at the end of a prefix,
	// e.g. "- 0", "第03话", "S01E0", "EP1".
	trailingEpisodeRe = regexp.MustCompile(`(?i)(?:第\s*|\b(?:episode|ep|e)\.?\s*|\bS\d{1,2}E)?\d+(?:v\d+)?\s*[话話集]?$`)

	// markedEpisodeRe only matches a trailing number introduced by an episode
	// marker, so "Mob Psycho 100" keeps its number when it is the only file.
	markedEpisodeRe = regexp.MustCompile(`(?i)(?:^|\s-\s*|第\s*|\b(?:episode|ep|e)\.?\s*|\bS\d{1,2}E)\d+(?:v\d+)?\s*[话話集]?$`)
)

const nameSeparators = " \t　-_.~·,:;|/+&#[(【「『{"

// SeriesName derives a series name from the stems of one directory. Each stem
// loses its leading group token and trailing bracketed tags; the longest
// common prefix of the sorted stems, minus any trailing episode token and
// separators, is the name. A lone stem only loses a number that follows an
// episode marker such as " - " or "EP". When that leaves less than two
// characters the directory name is used, or its parent's when the directory
// is only a season marker such as "Season 1".
func SeriesName(stems []string, dir string) string {
	cleaned := make([]string, 0, len(stems))
	for _, s := range stems {
		cleaned = append(cleaned, cleanStem(s))
	}
	sort.Strings(cleaned)

	episodeRe := trailingEpisodeRe
	if len(cleaned) == 1 {
		episodeRe = markedEpisodeRe
	}
	name := trimName(commonPrefix(cleaned), episodeRe)
	if utf8.RuneCountInString(name) > 1 {
		return name
	}
	return directoryName(dir)
}

func cleanStem(stem string) string {
	s := width.Fold.String(stem)
	if _, rest, ok := media.SplitLeadingToken(s); ok {
		s = rest
	}
	return stripTrailingBrackets(s)
}

// stripTrailingBrackets removes "[1080p][HEVC]" style suffixes.
func stripTrailingBrackets(s string) string {
	for {
		s = strings.TrimRight(s, " \t　")
		last, size := utf8.DecodeLastRuneInString(s)
		opener, ok := closingBrackets[last]
		if !ok {
			return s
		}
		open := strings.LastIndex(s[:len(s)-size], string(opener))
		if open < 0 {
			return s
		}
		s = s[:open]
	}
}

// commonPrefix returns the rune-wise longest common prefix of sorted strings.
// For sorted input it is enough to compare the first and last entries.
func commonPrefix(sorted []string) string {
	if len(sorted) == 0 {
		return ""
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	end := 0
	for i, r := range first {
		if i >= len(last) {
			break
		}
		lr, _ := utf8.DecodeRuneInString(last[i:])
		if lr != r {
			break
		}
		end = i + utf8.RuneLen(r)
	}
	return first[:end]
}

// trimName drops an episode token cut by the prefix, then separators. A
// number already followed by a separator belongs to the title.
func trimName(prefix string, episodeRe *regexp.Regexp) string {
	name := episodeRe.ReplaceAllString(prefix, "")
	name = strings.TrimRight(name, nameSeparators)
	return strings.TrimSpace(name)
}

func directoryName(dir string) string {
	base := filepath.Base(dir)
	if media.IsSeasonDir(base) {
		if parent := filepath.Base(filepath.Dir(dir)); parent != "." && parent != string(filepath.Separator) {
			return parent
		}
	}
	return base
}
