package media

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"golang.org/x/text/width"
)

// Extraction is what the extractor learned from a single filename.
type Extraction struct {
	Stem          string
	ReleaseGroup  string // empty when the name has no leading token
	GroupKnown    bool
	Tags          []string
	Episode       string // empty when unresolved
	EpisodeNumber int
	Pattern       string // source of the pattern that produced Episode
}

// Resolved reports whether an episode key was found.
func (e Extraction) Resolved() bool { return e.Episode != "" }

// leadingDelims pairs the opening and closing runes of a leading token.
var leadingDelims = map[rune]rune{
	'[': ']',
	'(': ')',
	'【': '】',
	'『': '』',
	'{': '}',
	'「': '」',
}

// Extractor pulls release group, tags and episode key from filenames using a
// snapshot of a registry's vocabulary. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct {
	reg       *config.Registry
	tags      []string
	lowerTags []string
	patterns  []config.EpisodePattern
}

// NewExtractor snapshots the vocabulary of reg.
func NewExtractor(reg *config.Registry) *Extractor {
	x := &Extractor{
		reg:      reg,
		tags:     reg.Tags(),
		patterns: reg.EpisodePatterns(),
	}
	x.lowerTags = make([]string, len(x.tags))
	for i, t := range x.tags {
		x.lowerTags[i] = strings.ToLower(t)
	}
	return x
}

// Extract analyzes a filename, stripping its extension first.
func (x *Extractor) Extract(filename string) Extraction {
	base := filepath.Base(filename)
	return x.ExtractStem(base[:len(base)-len(filepath.Ext(base))])
}

// ExtractStem analyzes a filename stem.
func (x *Extractor) ExtractStem(stem string) Extraction {
	folded := width.Fold.String(stem)
	out := Extraction{Stem: stem}

	token, rest, ok := SplitLeadingToken(folded)
	if ok {
		out.ReleaseGroup = token
		out.GroupKnown = x.reg.IsKnownGroup(token)
	}

	lower := strings.ToLower(rest)
	for i, t := range x.lowerTags {
		if t != "" && strings.Contains(lower, t) {
			out.Tags = append(out.Tags, x.tags[i])
		}
	}
	sort.Strings(out.Tags)

	for _, p := range x.patterns {
		if n, ok := p.Match(rest); ok {
			out.EpisodeNumber = n
			out.Episode = EpisodeKey(n)
			out.Pattern = p.Source
			break
		}
	}
	return out
}

// EpisodeKey renders an episode number with at least two digits.
func EpisodeKey(n int) string {
	return fmt.Sprintf("%02d", n)
}

// SplitLeadingToken splits off a leading delimited token such as "[Group]".
// It returns the trimmed token text and the remainder. ok is false when s
// does not start with a closed, non-empty token.
func SplitLeadingToken(s string) (token, rest string, ok bool) {
	trimmed := strings.TrimLeft(s, " \t_.-")
	open, size := utf8.DecodeRuneInString(trimmed)
	closer, isDelim := leadingDelims[open]
	if !isDelim {
		return "", s, false
	}
	end := strings.IndexRune(trimmed[size:], closer)
	if end < 0 {
		return "", s, false
	}
	token = strings.TrimSpace(trimmed[size : size+end])
	if token == "" {
		return "", s, false
	}
	return token, trimmed[size+end+utf8.RuneLen(closer):], true
}
