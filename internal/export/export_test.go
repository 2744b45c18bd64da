package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/google/go-cmp/cmp"
)

func sampleRecords() []core.SeriesRecord {
	return []core.SeriesRecord{
		{
			Name:         "Frieren",
			Dir:          "/anime/Frieren",
			ReleaseGroup: "LoliHouse",
			Tags:         []string{"1080p", "HEVC"},
			Episodes: map[string]string{
				"10": "/anime/Frieren/10.mkv",
				"02": "/anime/Frieren/02.mkv",
				"01": "/anime/Frieren/01.mkv",
			},
			Unresolved: []string{"/anime/Frieren/NCOP.mkv"},
		},
		{
			Name:         "Oshi no Ko",
			Dir:          "/anime/Oshi no Ko/Season 2",
			Season:       2,
			ReleaseGroup: "ANi",
			Tags:         []string{"WEB-DL"},
			Episodes:     map[string]string{"01": "/anime/Oshi no Ko/Season 2/01.mp4"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	want := [][]string{
		CSVHeader,
		{"Frieren", "/anime/Frieren", "", "LoliHouse", "1080p;HEVC", "01", "/anime/Frieren/01.mkv", "resolved"},
		{"Frieren", "/anime/Frieren", "", "LoliHouse", "1080p;HEVC", "02", "/anime/Frieren/02.mkv", "resolved"},
		{"Frieren", "/anime/Frieren", "", "LoliHouse", "1080p;HEVC", "10", "/anime/Frieren/10.mkv", "resolved"},
		{"Frieren", "/anime/Frieren", "", "LoliHouse", "1080p;HEVC", "", "/anime/Frieren/NCOP.mkv", "unresolved"},
		{"Oshi no Ko", "/anime/Oshi no Ko/Season 2", "2", "ANi", "WEB-DL", "01", "/anime/Oshi no Ko/Season 2/01.mp4", "resolved"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("WriteCSV() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSeriesJSON(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteSeriesJSON(&buf, sampleRecords()); err != nil {
			t.Fatalf("WriteSeriesJSON() error = %v", err)
		}
		var got []core.SeriesRecord
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid json: %v", err)
		}
		if diff := cmp.Diff(sampleRecords(), got); diff != "" {
			t.Errorf("decoded records mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(buf.String(), `"series_name": "Frieren"`) {
			t.Errorf("output missing series_name field:\n%s", buf.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteSeriesJSON(&buf, nil); err != nil {
			t.Fatalf("WriteSeriesJSON(nil) error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("WriteSeriesJSON(nil) = %q, want []", got)
		}
	})
}

func TestWriteLibraryJSON(t *testing.T) {
	s1 := core.SeriesRecord{Name: "Show", Dir: "/a/Show/Season 1", Season: 1, ReleaseGroup: "ANi",
		Episodes: map[string]string{"01": "/a/1.mkv"}}
	s2 := core.SeriesRecord{Name: "Show", Dir: "/a/Show/Season 2", Season: 2, ReleaseGroup: "ANi",
		Episodes: map[string]string{"01": "/a/2.mkv", "02": "/a/3.mkv"}}
	dupA := core.SeriesRecord{Name: "Dup", Dir: "/a/Dup A", Episodes: map[string]string{"01": "/a/x.mkv"}}
	dupB := core.SeriesRecord{Name: "Dup", Dir: "/a/Dup B", Episodes: map[string]string{"01": "/a/y.mkv"}}

	lib := core.MergeLibrary([]core.SeriesRecord{s1, s2, dupA, dupB})

	var buf bytes.Buffer
	if err := WriteLibraryJSON(&buf, lib); err != nil {
		t.Fatalf("WriteLibraryJSON() error = %v", err)
	}

	var got struct {
		Shows []struct {
			Name          string            `json:"series_name"`
			TotalSeasons  int               `json:"total_seasons"`
			TotalEpisodes int               `json:"total_episodes"`
			Episodes      map[string]string `json:"episodes"`
		} `json:"shows"`
		Unmerged []struct {
			Name     string `json:"series_name"`
			Conflict string `json:"conflict"`
		} `json:"unmerged"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}

	if len(got.Shows) != 1 {
		t.Fatalf("len(shows) = %d, want 1", len(got.Shows))
	}
	show := got.Shows[0]
	if show.Name != "Show" || show.TotalSeasons != 2 || show.TotalEpisodes != 3 {
		t.Errorf("show = %+v, want Show with 2 seasons and 3 episodes", show)
	}
	wantEpisodes := map[string]string{"S01E01": "/a/1.mkv", "S02E01": "/a/2.mkv", "S02E02": "/a/3.mkv"}
	if diff := cmp.Diff(wantEpisodes, show.Episodes); diff != "" {
		t.Errorf("episodes mismatch (-want +got):\n%s", diff)
	}
	if len(got.Unmerged) != 1 || got.Unmerged[0].Name != "Dup" || got.Unmerged[0].Conflict == "" {
		t.Errorf("unmerged = %+v, want Dup with a conflict message", got.Unmerged)
	}
}

func TestWriteM3U(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteM3U(&buf, SeriesPlaylist(sampleRecords()[0])); err != nil {
		t.Fatalf("WriteM3U() error = %v", err)
	}
	want := "#EXTM3U\n" +
		"#EXTINF:-1,Frieren - 01\n/anime/Frieren/01.mkv\n" +
		"#EXTINF:-1,Frieren - 02\n/anime/Frieren/02.mkv\n" +
		"#EXTINF:-1,Frieren - 10\n/anime/Frieren/10.mkv\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteM3U() mismatch (-want +got):\n%s", diff)
	}
}

func TestShowPlaylist(t *testing.T) {
	show := core.BangumiRecord{
		Name: "Show",
		Episodes: map[core.EpisodeKey]string{
			{Season: 2, Episode: "01"}: "/c.mkv",
			{Season: 1, Episode: "10"}: "/b.mkv",
			{Season: 1, Episode: "02"}: "/a.mkv",
		},
	}
	want := []PlaylistEntry{
		{Title: "Show - S01E02", Path: "/a.mkv"},
		{Title: "Show - S01E10", Path: "/b.mkv"},
		{Title: "Show - S02E01", Path: "/c.mkv"},
	}
	if diff := cmp.Diff(want, ShowPlaylist(show)); diff != "" {
		t.Errorf("ShowPlaylist() mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePlaylists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playlists")
	entries := []PlaylistEntry{{Title: "x", Path: "/x.mkv"}}

	written, err := WritePlaylists(dir, []Playlist{
		{Name: "Re:Zero", Entries: entries},
		{Name: "Re:Zero", Entries: entries},
		{Name: "Empty"},
	})
	if err != nil {
		t.Fatalf("WritePlaylists() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "Re Zero.m3u"),
		filepath.Join(dir, "Re Zero (2).m3u"),
	}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Errorf("WritePlaylists() files mismatch (-want +got):\n%s", diff)
	}
	for _, path := range written {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}
		if !strings.HasPrefix(string(data), "#EXTM3U\n") {
			t.Errorf("%s does not start with #EXTM3U", path)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "Empty.m3u")); !os.IsNotExist(err) {
		t.Errorf("empty playlist should not be written, stat err = %v", err)
	}
}

func TestWritePlaylists_SuffixCollision(t *testing.T) {
	dir := t.TempDir()
	entries := []PlaylistEntry{{Title: "x", Path: "/x.mkv"}}

	written, err := WritePlaylists(dir, []Playlist{
		{Name: "A", Entries: entries},
		{Name: "A", Entries: entries},
		{Name: "A (2)", Entries: entries},
	})
	if err != nil {
		t.Fatalf("WritePlaylists() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "A.m3u"),
		filepath.Join(dir, "A (2).m3u"),
		filepath.Join(dir, "A (2) (2).m3u"),
	}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Errorf("WritePlaylists() files mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleRecords())

	if s.Series != 2 || s.Episodes != 4 || s.Unresolved != 1 {
		t.Errorf("ComputeStats() = %+v, want 2 series, 4 episodes, 1 unresolved", s)
	}
	if got := s.Average(); got != 2 {
		t.Errorf("Average() = %v, want 2", got)
	}
	wantGroups := []Count{{"ANi", 1}, {"LoliHouse", 1}}
	if diff := cmp.Diff(wantGroups, s.TopReleaseGroups(0)); diff != "" {
		t.Errorf("TopReleaseGroups() mismatch (-want +got):\n%s", diff)
	}
	if got := s.TopTags(2); len(got) != 2 || got[0].Name != "1080p" {
		t.Errorf("TopTags(2) = %v, want two entries starting with 1080p", got)
	}
	if got := (Stats{}).Average(); got != 0 {
		t.Errorf("empty Average() = %v, want 0", got)
	}
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(ComputeStats(sampleRecords()), 5)
	for _, want := range []string{"Statistic", "Release group", "Tag", "Unresolved files", "2.0", "LoliHouse", "HEVC", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStats() missing %q:\n%s", want, out)
		}
	}
}
