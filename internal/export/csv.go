package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
)

// CSVHeader is the fixed column layout of WriteCSV.
var CSVHeader = []string{"series_name", "directory", "season", "release_group", "tags", "episode", "path", "status"}

const (
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// WriteCSV writes one row per mapped episode, in episode order, followed by
// one row per unresolved file. Tags are joined with ";" and a missing season
// marker is left empty.
func WriteCSV(w io.Writer, records []core.SeriesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		season := ""
		if r.Season > 0 {
			season = strconv.Itoa(r.Season)
		}
		tags := strings.Join(r.Tags, ";")

		for _, ep := range r.EpisodeKeys() {
			row := []string{r.Name, r.Dir, season, r.ReleaseGroup, tags, ep, r.Episodes[ep], StatusResolved}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		for _, path := range r.Unresolved {
			row := []string{r.Name, r.Dir, season, r.ReleaseGroup, tags, "", path, StatusUnresolved}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
