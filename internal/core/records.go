package core

import (
	"slices"
	"strconv"
)

// SeriesRecord is the analysis result for one directory of episodes.
type SeriesRecord struct {
	Name         string            `json:"series_name"`
	Dir          string            `json:"directory"`
	Season       int               `json:"season,omitempty"` // marker parsed from Dir, 0 when absent
	ReleaseGroup string            `json:"release_group,omitempty"`
	Tags         []string          `json:"tags"`
	Episodes     map[string]string `json:"episodes"`
	Unresolved   []string          `json:"unresolved,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	SampleFile   string            `json:"sample_file,omitempty"`
	Pattern      string            `json:"pattern,omitempty"`
}

// EpisodeCount returns the number of mapped episodes.
func (r SeriesRecord) EpisodeCount() int { return len(r.Episodes) }

// EpisodeKeys returns the episode keys in numeric order.
func (r SeriesRecord) EpisodeKeys() []string {
	keys := make([]string, 0, len(r.Episodes))
	for k := range r.Episodes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareEpisode)
	return keys
}

// EpisodeKey identifies an episode across seasons.
type EpisodeKey struct {
	Season  int
	Episode string
}

// Season pairs a record with the season number it contributes to a show.
type Season struct {
	Number int
	Record SeriesRecord
}

// BangumiRecord is a show assembled from one or more season records.
type BangumiRecord struct {
	Name          string
	Seasons       []Season
	Episodes      map[EpisodeKey]string
	ReleaseGroups []string
	Tags          []string
}

// EpisodeCount returns the number of episodes over all seasons.
func (b BangumiRecord) EpisodeCount() int { return len(b.Episodes) }

// Keys returns the flattened keys ordered by season, then episode number.
func (b BangumiRecord) Keys() []EpisodeKey {
	keys := make([]EpisodeKey, 0, len(b.Episodes))
	for k := range b.Episodes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b EpisodeKey) int {
		if a.Season != b.Season {
			return a.Season - b.Season
		}
		return compareEpisode(a.Episode, b.Episode)
	})
	return keys
}

// compareEpisode orders keys numerically, falling back to string order for
// keys that are not numbers.
func compareEpisode(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil && na != nb:
		return na - nb
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
