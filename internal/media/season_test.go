package media

import "testing"

func TestParseSeasonMarker(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"Season 1", 1, true},
		{"Season02", 2, true},
		{"S2", 2, true},
		{"[Group] Show S3 [1080p]", 3, true},
		{"Show 2nd Season", 2, true},
		{"第二季", 2, true},
		{"第十二季", 12, true},
		{"第2期", 2, true},
		{"2期", 2, true},
		{"进击的巨人 第三季", 3, true},
		{"Show", 0, false},
		{"Show S01E01", 0, false},
		{"1080p", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSeasonMarker(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseSeasonMarker(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsSeasonDir(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Season 1", true},
		{"season 01", true},
		{"S2", true},
		{"第二季", true},
		{"第2期", true},
		{"2期", true},
		{"2nd Season", true},
		{"Show Season 1", false},
		{"Show", false},
		{"Specials", false},
	}
	for _, tt := range tests {
		if got := IsSeasonDir(tt.in); got != tt.want {
			t.Errorf("IsSeasonDir(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStripSeasonMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Show", "Show"},
		{"Show S2", "Show"},
		{"Show Season 2", "Show"},
		{"Show 2nd Season", "Show"},
		{"Show (S2)", "Show"},
		{"Spy 第二季", "Spy"},
		{"进击的巨人 第3期", "进击的巨人"},
		{"某番剧2季", "某番剧"},
		{"Mob Psycho 100", "Mob Psycho 100"},
		{"Show S01E01", "Show S01E01"},
		{"Season 1", ""},
	}
	for _, tt := range tests {
		if got := StripSeasonMarker(tt.in); got != tt.want {
			t.Errorf("StripSeasonMarker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseChineseNumeral(t *testing.T) {
	tests := map[string]int{
		"一": 1, "二": 2, "两": 2, "九": 9, "十": 10,
		"十一": 11, "二十": 20, "二十三": 23,
	}
	for in, want := range tests {
		got, ok := parseChineseNumeral(in)
		if !ok || got != want {
			t.Errorf("parseChineseNumeral(%q) = (%d, %v), want (%d, true)", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "百", "一二", "十十十十"} {
		if _, ok := parseChineseNumeral(in); ok {
			t.Errorf("parseChineseNumeral(%q) ok = true, want false", in)
		}
	}
}
