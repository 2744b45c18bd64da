package core

import (
	"math/rand"
	"testing"

	"github.com/Digital-Shane/bangumi-tidy/internal/media"
	"github.com/google/go-cmp/cmp"
)

func TestSeriesName(t *testing.T) {
	tests := []struct {
		name  string
		stems []string
		dir   string
		want  string
	}{
		{
			name:  "CommonPrefix",
			stems: []string{"[LoliHouse] Show - 01 [1080p][HEVC]", "[LoliHouse] Show - 02 [1080p][HEVC]"},
			dir:   "/anime/whatever",
			want:  "Show",
		},
		{
			name:  "BracketedEpisodes",
			stems: []string{"[Group] Title [01][1080p]", "[Group] Title [02][1080p]"},
			dir:   "/anime/x",
			want:  "Title",
		},
		{
			name:  "CJK",
			stems: []string{"[桜都字幕组] 葬送的芙莉莲 - 01 [1080p]", "[桜都字幕组] 葬送的芙莉莲 - 02 [1080p]"},
			dir:   "/anime/x",
			want:  "葬送的芙莉莲",
		},
		{
			name:  "SeasonEpisodeSuffix",
			stems: []string{"Show S01E01", "Show S01E02"},
			dir:   "/anime/x",
			want:  "Show",
		},
		{
			name:  "NumberInTitle",
			stems: []string{"Mob Psycho 100 - 01", "Mob Psycho 100 - 12"},
			dir:   "/anime/x",
			want:  "Mob Psycho 100",
		},
		{
			name:  "SingleFileDropsEpisode",
			stems: []string{"[ANi] Show - 05 [1080P]"},
			dir:   "/anime/x",
			want:  "Show",
		},
		{
			name:  "SingleFileKeepsTitleNumber",
			stems: []string{"[G] Mob Psycho 100 [1080p]"},
			dir:   "/anime/Movies",
			want:  "Mob Psycho 100",
		},
		{
			name:  "SingleFileDropsMarkedEpisode",
			stems: []string{"[G] Show EP12 [1080p]"},
			dir:   "/anime/x",
			want:  "Show",
		},
		{
			name:  "EpisodeOnlyFallsBackToDir",
			stems: []string{"第03话"},
			dir:   "/anime/Some Show",
			want:  "Some Show",
		},
		{
			name:  "SingleBareNumberFallsBackToDir",
			stems: []string{"05"},
			dir:   "/anime/Some Show",
			want:  "Some Show",
		},
		{
			name:  "DegenerateFallsBackToDir",
			stems: []string{"01", "02"},
			dir:   "/anime/Some Show",
			want:  "Some Show",
		},
		{
			name:  "SeasonDirUsesParent",
			stems: []string{"01", "02"},
			dir:   "/anime/Some Show/Season 2",
			want:  "Some Show",
		},
		{
			name:  "ChineseSeasonDirUsesParent",
			stems: []string{"01", "02"},
			dir:   "/anime/某番剧/第二季",
			want:  "某番剧",
		},
		{
			name:  "NoCommonPrefix",
			stems: []string{"Alpha 01", "Beta 02"},
			dir:   "/anime/Mixed",
			want:  "Mixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeriesName(tt.stems, tt.dir); got != tt.want {
				t.Errorf("SeriesName(%q, %q) = %q, want %q", tt.stems, tt.dir, got, tt.want)
			}
		})
	}
}

func TestSeriesNameOrderInvariant(t *testing.T) {
	stems := []string{
		"[SweetSub] Title - 03 [WebRip][1080P]",
		"[SweetSub] Title - 01 [WebRip][1080P]",
		"[SweetSub] Title - 10 [WebRip][1080P]",
		"[SweetSub] Title - 02 [WebRip][1080P]",
	}
	want := SeriesName(stems, "/anime/x")
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), stems...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := SeriesName(shuffled, "/anime/x"); got != want {
			t.Fatalf("SeriesName(%q) = %q, want %q", shuffled, got, want)
		}
	}
	if want != "Title" {
		t.Errorf("SeriesName() = %q, want Title", want)
	}
}

func TestGroupByDirectory(t *testing.T) {
	files := []media.MediaFile{
		media.NewMediaFile("/anime/B/02.mkv"),
		media.NewMediaFile("/anime/A/b.mkv"),
		media.NewMediaFile("/anime/B/01.mkv"),
		media.NewMediaFile("/anime/A/a.mkv"),
	}

	var got [][]string
	for _, g := range GroupByDirectory(files) {
		names := []string{g.Dir}
		for _, f := range g.Files {
			names = append(names, f.Name())
		}
		got = append(got, names)
	}

	want := [][]string{
		{"/anime/A", "a.mkv", "b.mkv"},
		{"/anime/B", "01.mkv", "02.mkv"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupByDirectory() mismatch (-want +got):\n%s", diff)
	}
}

func TestStripTrailingBrackets(t *testing.T) {
	tests := map[string]string{
		"Show - 01 [1080p][HEVC]": "Show - 01",
		"Show (2024) [WEB]":       "Show",
		"Show - 01 【简体】":          "Show - 01",
		"Show - 01 [unbalanced":   "Show - 01 [unbalanced",
		"Show - 01 unbalanced]":   "Show - 01 unbalanced]",
		"[Only]":                  "",
		"Plain":                   "Plain",
	}
	for in, want := range tests {
		if got := stripTrailingBrackets(in); got != want {
			t.Errorf("stripTrailingBrackets(%q) = %q, want %q", in, got, want)
		}
	}
}
