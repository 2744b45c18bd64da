package media

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// seasonMarkerRes find a season number anywhere in a directory name.
	seasonMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bSeason[\s._-]*(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)[\s._-]*Season\b`),
		regexp.MustCompile(`(?i)(?:^|[\s._\-\[(])S(\d{1,2})(?:$|[\s._\-\])])`),
		regexp.MustCompile(`第\s*(\d{1,2})\s*[季期部]`),
		regexp.MustCompile(`(?:^|[^\d])(\d{1,2})[季期]`),
	}

	// chineseSeasonRe matches 第二季, 第十一期 and similar.
	chineseSeasonRe = regexp.MustCompile(`第([零一二三四五六七八九十两]+)[季期部]`)

	// bareSeasonDirRe matches directory names that carry nothing but a season marker.
	bareSeasonDirRe = regexp.MustCompile(`(?i)^(?:Season[\s._-]*\d{1,2}|S\d{1,2}|\d{1,2}(?:st|nd|rd|th)[\s._-]*Season|第\s*(?:\d{1,2}|[零一二三四五六七八九十两]+)\s*[季期部]|\d{1,2}[季期])$`)
)

// seasonStripRes remove season markers from a series name. The boundary
// character captured by some patterns is put back.
var seasonStripRes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bSeason[\s._-]*\d{1,2}\b`), " "},
	{regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)[\s._-]*Season\b`), " "},
	{regexp.MustCompile(`(?i)(^|[\s._\-\[(])S\d{1,2}($|[\s._\-\])])`), "${1} ${2}"},
	{regexp.MustCompile(`第\s*(?:\d{1,2}|[零一二三四五六七八九十两]+)\s*[季期部]`), " "},
	{regexp.MustCompile(`(^|[^\d])\d{1,2}[季期]`), "${1} "},
}

const seasonStripCutset = " \t　-_.~·:|[]()"

// StripSeasonMarker removes season markers from a series name so "Show S2"
// and "Spy 第二季" compare equal to "Show" and "Spy". A name that is nothing
// but a marker comes back empty.
func StripSeasonMarker(name string) string {
	for _, s := range seasonStripRes {
		name = s.re.ReplaceAllString(name, s.repl)
	}
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, seasonStripCutset)
}

// ParseSeasonMarker extracts a season number from a directory name such as
// "Show S2", "Season 02", "2nd Season" or "第二季".
func ParseSeasonMarker(name string) (int, bool) {
	if n, ok := firstIntFromRegexps(name, seasonMarkerRes...); ok {
		return n, true
	}
	if m := chineseSeasonRe.FindStringSubmatch(name); m != nil {
		return parseChineseNumeral(m[1])
	}
	return 0, false
}

// IsSeasonDir reports whether name is only a season marker, like "Season 1"
// or "第二季", and therefore says nothing about the series.
func IsSeasonDir(name string) bool {
	return bareSeasonDirRe.MatchString(strings.TrimSpace(name))
}

func firstIntFromRegexps(input string, regexps ...*regexp.Regexp) (int, bool) {
	for _, re := range regexps {
		m := re.FindStringSubmatch(input)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseChineseNumeral handles numerals up to 99: 三, 十, 十二, 二十, 二十三.
func parseChineseNumeral(s string) (int, bool) {
	runes := []rune(s)
	if len(runes) == 0 || len(runes) > 3 {
		return 0, false
	}

	tens := strings.IndexRune(s, '十')
	if tens < 0 {
		if len(runes) != 1 {
			return 0, false
		}
		d, ok := chineseDigits[runes[0]]
		return d, ok
	}

	n := 10
	before := []rune(s[:tens])
	after := []rune(s[tens+len("十"):])
	if len(before) == 1 {
		d, ok := chineseDigits[before[0]]
		if !ok {
			return 0, false
		}
		n = d * 10
	} else if len(before) > 1 {
		return 0, false
	}
	if len(after) == 1 {
		d, ok := chineseDigits[after[0]]
		if !ok {
			return 0, false
		}
		n += d
	} else if len(after) > 1 {
		return 0, false
	}
	return n, true
}
