package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// EpisodePattern is a compiled episode-number rule. Source keeps the text as it
// was written so the registry can be saved back unchanged.
type EpisodePattern struct {
	Source string
	re     *regexp.Regexp
}

// CompileEpisodePattern compiles src case-insensitively and checks that it has
// exactly one capturing group.
func CompileEpisodePattern(src string) (EpisodePattern, error) {
	re, err := regexp.Compile("(?i)" + src)
	if err != nil {
		return EpisodePattern{}, err
	}
	if n := re.NumSubexp(); n != 1 {
		return EpisodePattern{}, fmt.Errorf("pattern must have exactly one capturing group, has %d", n)
	}
	return EpisodePattern{Source: src, re: re}, nil
}

// Match returns the episode number captured from s. A match whose capture is
// not a non-negative integer counts as no match.
func (p EpisodePattern) Match(s string) (int, bool) {
	if p.re == nil {
		return 0, false
	}
	m := p.re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Registry holds the vocabulary used by the extractor as two ordered tiers:
// user entries first, built-ins second. Built-ins are never removed.
//
// A registry is mutable until Freeze is called. The pipeline freezes it before
// scanning so concurrent parses only ever read it.
type Registry struct {
	userGroups     []string
	userTags       []string
	userPatterns   []EpisodePattern
	userExtensions []string

	builtinGroups     []string
	builtinTags       []string
	builtinPatterns   []EpisodePattern
	builtinExtensions []string

	frozen bool
}

// NewRegistry returns a registry holding only the built-in vocabulary.
func NewRegistry() *Registry {
	r := &Registry{
		builtinGroups:     cloneStrings(defaultReleaseGroups),
		builtinTags:       cloneStrings(defaultTags),
		builtinExtensions: cloneStrings(defaultVideoExtensions),
	}
	for _, src := range defaultEpisodePatterns {
		p, err := CompileEpisodePattern(src)
		if err != nil {
			panic(fmt.Sprintf("built-in episode pattern %q: %v", src, err))
		}
		r.builtinPatterns = append(r.builtinPatterns, p)
	}
	return r
}

// Freeze finalizes the registry; later Add* calls fail with ErrFrozen.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// AddReleaseGroup appends a release group to the user tier.
func (r *Registry) AddReleaseGroup(name string) error {
	if r.frozen {
		return ErrFrozen
	}
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(r.userGroups, name) {
		return nil
	}
	r.userGroups = append(r.userGroups, name)
	return nil
}

// AddTag appends a tag to the user tier.
func (r *Registry) AddTag(tag string) error {
	if r.frozen {
		return ErrFrozen
	}
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(r.userTags, tag) {
		return nil
	}
	r.userTags = append(r.userTags, tag)
	return nil
}

// AddEpisodePattern validates and appends an episode pattern to the user tier.
func (r *Registry) AddEpisodePattern(src string) error {
	if r.frozen {
		return ErrFrozen
	}
	p, err := CompileEpisodePattern(src)
	if err != nil {
		return &ConfigError{Field: "episode_patterns", Value: src, Err: err}
	}
	for _, existing := range r.userPatterns {
		if existing.Source == src {
			return nil
		}
	}
	r.userPatterns = append(r.userPatterns, p)
	return nil
}

// AddVideoExtension appends a video extension ("mkv" or ".mkv") to the user tier.
func (r *Registry) AddVideoExtension(ext string) error {
	if r.frozen {
		return ErrFrozen
	}
	ext = normalizeExtension(ext)
	if ext == "" || slices.Contains(r.userExtensions, ext) {
		return nil
	}
	r.userExtensions = append(r.userExtensions, ext)
	return nil
}

// EpisodePatterns returns user patterns followed by built-ins, without duplicates.
func (r *Registry) EpisodePatterns() []EpisodePattern {
	out := make([]EpisodePattern, 0, len(r.userPatterns)+len(r.builtinPatterns))
	seen := make(map[string]struct{}, cap(out))
	for _, tier := range [][]EpisodePattern{r.userPatterns, r.builtinPatterns} {
		for _, p := range tier {
			if _, ok := seen[p.Source]; ok {
				continue
			}
			seen[p.Source] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// ReleaseGroups returns the known release groups, user tier first.
func (r *Registry) ReleaseGroups() []string {
	return mergeTiers(r.userGroups, r.builtinGroups, false)
}

// IsKnownGroup reports an exact, case-sensitive match against the known groups.
func (r *Registry) IsKnownGroup(name string) bool {
	return slices.Contains(r.userGroups, name) || slices.Contains(r.builtinGroups, name)
}

// Tags returns the tag vocabulary, user tier first. Tags differing only by case
// collapse to the first spelling seen since matching ignores case.
func (r *Registry) Tags() []string {
	return mergeTiers(r.userTags, r.builtinTags, true)
}

// VideoExtensions returns lower-case extensions with a leading dot.
func (r *Registry) VideoExtensions() []string {
	return mergeTiers(r.userExtensions, r.builtinExtensions, false)
}

// Document returns the user tier in document form.
func (r *Registry) Document() Document {
	doc := Document{
		ReleaseGroups:   cloneStrings(r.userGroups),
		Tags:            cloneStrings(r.userTags),
		VideoExtensions: cloneStrings(r.userExtensions),
	}
	for _, p := range r.userPatterns {
		doc.EpisodePatterns = append(doc.EpisodePatterns, p.Source)
	}
	return doc
}

// apply adds every entry of doc to the user tier.
func (r *Registry) apply(doc Document, path string) error {
	for i, src := range doc.EpisodePatterns {
		if err := r.AddEpisodePattern(src); err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				ce.Path = path
				ce.Field = fmt.Sprintf("episode_patterns[%d]", i)
				return ce
			}
			return err
		}
	}
	for _, g := range doc.ReleaseGroups {
		if err := r.AddReleaseGroup(g); err != nil {
			return err
		}
	}
	for _, t := range doc.Tags {
		if err := r.AddTag(t); err != nil {
			return err
		}
	}
	for _, ext := range doc.VideoExtensions {
		if err := r.AddVideoExtension(ext); err != nil {
			return err
		}
	}
	return nil
}

func mergeTiers(user, builtin []string, foldCase bool) []string {
	out := make([]string, 0, len(user)+len(builtin))
	seen := make(map[string]struct{}, cap(out))
	for _, tier := range [][]string{user, builtin} {
		for _, v := range tier {
			key := v
			if foldCase {
				key = strings.ToLower(v)
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
