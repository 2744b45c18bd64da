package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
)

type seasonJSON struct {
	Season int `json:"season"`
	core.SeriesRecord
}

type showJSON struct {
	Name          string            `json:"series_name"`
	TotalSeasons  int               `json:"total_seasons"`
	TotalEpisodes int               `json:"total_episodes"`
	ReleaseGroups []string          `json:"release_groups"`
	Tags          []string          `json:"tags"`
	Seasons       []seasonJSON      `json:"seasons"`
	Episodes      map[string]string `json:"episodes"` // "S01E02" -> path
}

type unmergedJSON struct {
	Name     string              `json:"series_name"`
	Conflict string              `json:"conflict"`
	Seasons  []core.SeriesRecord `json:"seasons"`
}

type libraryJSON struct {
	Shows    []showJSON     `json:"shows"`
	Unmerged []unmergedJSON `json:"unmerged,omitempty"`
}

// WriteSeriesJSON writes records as an indented JSON array.
func WriteSeriesJSON(w io.Writer, records []core.SeriesRecord) error {
	if records == nil {
		records = []core.SeriesRecord{}
	}
	return writeJSON(w, records)
}

// WriteLibraryJSON writes merged shows, plus the season records of shows that
// could not be merged.
func WriteLibraryJSON(w io.Writer, lib core.Library) error {
	out := libraryJSON{Shows: make([]showJSON, 0, len(lib.Shows))}
	for _, show := range lib.Shows {
		out.Shows = append(out.Shows, toShowJSON(show))
	}
	for _, u := range lib.Unmerged {
		entry := unmergedJSON{Name: u.Name, Seasons: u.Seasons}
		if u.Conflict != nil {
			entry.Conflict = u.Conflict.Error()
		}
		out.Unmerged = append(out.Unmerged, entry)
	}
	return writeJSON(w, out)
}

func toShowJSON(show core.BangumiRecord) showJSON {
	s := showJSON{
		Name:          show.Name,
		TotalSeasons:  len(show.Seasons),
		TotalEpisodes: show.EpisodeCount(),
		ReleaseGroups: show.ReleaseGroups,
		Tags:          show.Tags,
		Episodes:      make(map[string]string, len(show.Episodes)),
	}
	for _, season := range show.Seasons {
		s.Seasons = append(s.Seasons, seasonJSON{Season: season.Number, SeriesRecord: season.Record})
	}
	for key, path := range show.Episodes {
		s.Episodes[EpisodeLabel(key)] = path
	}
	return s
}

// EpisodeLabel renders a key as S01E02.
func EpisodeLabel(key core.EpisodeKey) string {
	return fmt.Sprintf("S%02dE%s", key.Season, key.Episode)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
