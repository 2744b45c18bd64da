package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Digital-Shane/bangumi-tidy/internal/core"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Stats summarizes analysis results.
type Stats struct {
	Series        int
	Episodes      int
	Unresolved    int
	ReleaseGroups map[string]int // series per group
	Tags          map[string]int // series per tag
}

// Count is a histogram bucket.
type Count struct {
	Name  string
	Count int
}

// ComputeStats counts series, episodes and the group and tag histograms.
func ComputeStats(records []core.SeriesRecord) Stats {
	s := Stats{
		Series:        len(records),
		ReleaseGroups: make(map[string]int),
		Tags:          make(map[string]int),
	}
	for _, r := range records {
		s.Episodes += r.EpisodeCount()
		s.Unresolved += len(r.Unresolved)
		if r.ReleaseGroup != "" {
			s.ReleaseGroups[r.ReleaseGroup]++
		}
		for _, t := range r.Tags {
			s.Tags[t]++
		}
	}
	return s
}

// Average returns episodes per series.
func (s Stats) Average() float64 {
	if s.Series == 0 {
		return 0
	}
	return float64(s.Episodes) / float64(s.Series)
}

// TopReleaseGroups returns the n largest groups, all of them when n <= 0.
func (s Stats) TopReleaseGroups(n int) []Count { return top(s.ReleaseGroups, n) }

// TopTags returns the n most common tags, all of them when n <= 0.
func (s Stats) TopTags(n int) []Count { return top(s.Tags, n) }

func top(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RenderStats formats s as tables: totals, release groups and the top tags.
func RenderStats(s Stats, topTags int) string {
	out := RenderTable([]string{"Statistic", "Value"}, [][]string{
		{"Series", strconv.Itoa(s.Series)},
		{"Episodes", strconv.Itoa(s.Episodes)},
		{"Unresolved files", strconv.Itoa(s.Unresolved)},
		{"Average episodes per series", fmt.Sprintf("%.1f", s.Average())},
	}, []text.Align{text.AlignLeft, text.AlignRight})

	if groups := s.TopReleaseGroups(0); len(groups) > 0 {
		out += "\n\n" + renderCounts("Release group", groups)
	}
	if tags := s.TopTags(topTags); len(tags) > 0 {
		out += "\n\n" + renderCounts("Tag", tags)
	}
	return out
}

func renderCounts(header string, counts []Count) string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Name, strconv.Itoa(c.Count)}
	}
	return RenderTable([]string{header, "Series"}, rows, []text.Align{text.AlignLeft, text.AlignRight})
}

// RenderTable renders rows under headers as a rounded table. Rows shorter than
// headers are padded; aligns applies per column and defaults to left.
func RenderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
