package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, r)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(r), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

func TestParse(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Show/Season 1/[LoliHouse] Show - 01 [1080p][HEVC].mkv",
		"Show/Season 1/[LoliHouse] Show - 02 [1080p][HEVC].mkv",
		"Show/Season 2/[LoliHouse] Show S2 - 01 [1080p][HEVC].mkv",
		"Show/Season 2/[LoliHouse] Show S2 - 02 [1080p][HEVC].mkv",
		"Movie/OP.mkv",
		"Movie/ED.mkv",
		"Movie/notes.txt",
	)

	reg := config.NewRegistry()
	var scanned []string
	res, err := Parse(context.Background(), root, reg, ParseOptions{
		Workers: 2,
		OnScan:  func(dir string, files int) { scanned = append(scanned, filepath.Base(dir)) },
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reg.Frozen() {
		t.Error("Parse() should freeze the registry")
	}
	if res.Files != 6 || res.Unresolved() != 2 {
		t.Errorf("Files = %d, Unresolved = %d, want 6 and 2", res.Files, res.Unresolved())
	}
	if len(scanned) != 5 {
		t.Errorf("OnScan called for %v, want every directory", scanned)
	}

	var got []string
	for _, s := range res.Series {
		got = append(got, s.Name)
	}
	if diff := cmp.Diff([]string{"Movie", "Show", "Show S2"}, got); diff != "" {
		t.Errorf("series names mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_InvalidRoot(t *testing.T) {
	_, err := Parse(context.Background(), filepath.Join(t.TempDir(), "missing"), config.NewRegistry(), ParseOptions{})
	if err == nil {
		t.Error("Parse(missing root) error = nil, want error")
	}
}

func TestParse_UsesRegistryExtensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Show/Show - 01.rmvb", "Show/Show - 02.mkv")

	reg := config.NewRegistry()
	if err := reg.AddVideoExtension("rmvb"); err != nil {
		t.Fatalf("AddVideoExtension() error = %v", err)
	}
	res, err := Parse(context.Background(), root, reg, ParseOptions{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := res.Series[0].EpisodeCount(); got != 2 {
		t.Errorf("EpisodeCount() = %d, want 2", got)
	}
}

func TestParseAndMerge(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Show/Season 1/Show - 01.mkv",
		"Show/Season 1/Show - 02.mkv",
		"Show/Season 2/Show - 01.mkv",
		"Show/Season 2/Show - 02.mkv",
		"Other/Other - 01.mkv",
	)

	res, lib, err := ParseAndMerge(context.Background(), root, config.NewRegistry(), ParseOptions{})
	if err != nil {
		t.Fatalf("ParseAndMerge() error = %v", err)
	}
	if len(res.Series) != 3 {
		t.Errorf("len(Series) = %d, want 3", len(res.Series))
	}
	if len(lib.Shows) != 2 || len(lib.Unmerged) != 0 {
		t.Fatalf("Library = %d shows, %d unmerged, want 2 and 0", len(lib.Shows), len(lib.Unmerged))
	}

	show := lib.Shows[1]
	want := []EpisodeKey{{1, "01"}, {1, "02"}, {2, "01"}, {2, "02"}}
	if diff := cmp.Diff(want, show.Keys()); diff != "" {
		t.Errorf("Show keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAndMerge_SeasonMarkerInName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Show/Season 1/[LoliHouse] Show - 01 [1080p][HEVC].mkv",
		"Show/Season 1/[LoliHouse] Show - 02 [1080p][HEVC].mkv",
		"Show/Season 2/[LoliHouse] Show S2 - 01 [1080p][HEVC].mkv",
		"Show/Season 2/[LoliHouse] Show S2 - 02 [1080p][HEVC].mkv",
		"Spy/[ANi] Spy - 01.mp4",
		"Spy 第二季/[ANi] Spy 第二季 - 01.mp4",
	)

	_, lib, err := ParseAndMerge(context.Background(), root, config.NewRegistry(), ParseOptions{})
	if err != nil {
		t.Fatalf("ParseAndMerge() error = %v", err)
	}
	if len(lib.Unmerged) != 0 {
		t.Fatalf("len(Unmerged) = %d, want 0: %+v", len(lib.Unmerged), lib.Unmerged)
	}

	got := make(map[string][]EpisodeKey)
	for _, s := range lib.Shows {
		got[s.Name] = s.Keys()
	}
	want := map[string][]EpisodeKey{
		"Show": {{1, "01"}, {1, "02"}, {2, "01"}, {2, "02"}},
		"Spy":  {{1, "01"}, {2, "01"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Library shows mismatch (-want +got):\n%s", diff)
	}
}
