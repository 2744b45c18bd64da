package core

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// MergeConflictError reports two records claiming the same season and episode.
type MergeConflictError struct {
	Key      EpisodeKey
	Existing string
	Incoming string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("season %d episode %s claimed by both %s and %s", e.Key.Season, e.Key.Episode, e.Existing, e.Incoming)
}

// IsMergeConflict reports whether err is or wraps a *MergeConflictError.
func IsMergeConflict(err error) bool {
	var e *MergeConflictError
	return errors.As(err, &e)
}

// Merge combines seasons into one show. Seasons are ordered by number, then
// directory; the show takes the name of the first. Nothing is overwritten: a
// repeated (season, episode) pair fails the whole merge.
func Merge(seasons []Season) (BangumiRecord, error) {
	ordered := slices.Clone(seasons)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Number != ordered[j].Number {
			return ordered[i].Number < ordered[j].Number
		}
		return ordered[i].Record.Dir < ordered[j].Record.Dir
	})

	b := BangumiRecord{
		Seasons:       ordered,
		Episodes:      make(map[EpisodeKey]string),
		ReleaseGroups: []string{},
		Tags:          []string{},
	}
	if len(ordered) > 0 {
		b.Name = ordered[0].Record.Name
	}

	groups := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, s := range ordered {
		for _, ep := range s.Record.EpisodeKeys() {
			key := EpisodeKey{Season: s.Number, Episode: ep}
			path := s.Record.Episodes[ep]
			if existing, ok := b.Episodes[key]; ok {
				return BangumiRecord{}, &MergeConflictError{Key: key, Existing: existing, Incoming: path}
			}
			b.Episodes[key] = path
		}
		if s.Record.ReleaseGroup != "" {
			groups[s.Record.ReleaseGroup] = struct{}{}
		}
		for _, t := range s.Record.Tags {
			tags[t] = struct{}{}
		}
	}

	for g := range groups {
		b.ReleaseGroups = append(b.ReleaseGroups, g)
	}
	for t := range tags {
		b.Tags = append(b.Tags, t)
	}
	sort.Strings(b.ReleaseGroups)
	sort.Strings(b.Tags)
	return b, nil
}

// MergeOrdered numbers records by their position: the first is season 1.
func MergeOrdered(records []SeriesRecord) (BangumiRecord, error) {
	seasons := make([]Season, len(records))
	for i, r := range records {
		seasons[i] = Season{Number: i + 1, Record: r}
	}
	return Merge(seasons)
}

// MergeInferred numbers records by the season marker of their directory.
// Directories without a marker count as season 1.
func MergeInferred(records []SeriesRecord) (BangumiRecord, error) {
	seasons := make([]Season, len(records))
	for i, r := range records {
		seasons[i] = Season{Number: InferSeason(r), Record: r}
	}
	return Merge(seasons)
}

// InferSeason returns the season marker of r, or 1 when it has none.
func InferSeason(r SeriesRecord) int {
	if r.Season > 0 {
		return r.Season
	}
	return 1
}
