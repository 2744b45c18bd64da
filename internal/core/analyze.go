package core

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"github.com/Digital-Shane/bangumi-tidy/internal/media"
	"github.com/mhmtszr/concurrent-swiss-map"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Analyzer turns groups of files into series records. Extraction runs on a
// bounded worker pool; records are assembled afterwards in sorted order so the
// output matches a sequential run.
type Analyzer struct {
	extractor *media.Extractor
	workers   int
	logger    logrus.FieldLogger
	memo      *cache.Cache
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithWorkers bounds the extraction pool. Values below one mean runtime.NumCPU().
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithAnalyzerLogger sets the logger collisions are reported to.
func WithAnalyzerLogger(l logrus.FieldLogger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer builds an analyzer over reg. The registry should be frozen.
func NewAnalyzer(reg *config.Registry, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		extractor: media.NewExtractor(reg),
		workers:   runtime.NumCPU(),
		memo:      cache.New(cache.NoExpiration, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Extract returns the extraction for f. Identical stems are only parsed once.
func (a *Analyzer) Extract(f media.MediaFile) media.Extraction {
	stem := f.Stem()
	if cached, ok := a.memo.Get(stem); ok {
		return cached.(media.Extraction)
	}
	ex := a.extractor.ExtractStem(stem)
	a.memo.Set(stem, ex, cache.DefaultExpiration)
	return ex
}

// Analyze extracts every file of groups and builds one record per group.
// progress, when set, is called after each file with the running count.
func (a *Analyzer) Analyze(ctx context.Context, groups []Group, progress func(done, total int)) ([]SeriesRecord, error) {
	var files []media.MediaFile
	for _, g := range groups {
		files = append(files, g.Files...)
	}

	results, err := a.extractAll(ctx, files, progress)
	if err != nil {
		return nil, err
	}

	records := make([]SeriesRecord, 0, len(groups))
	for _, g := range groups {
		records = append(records, a.buildRecord(g, results))
	}
	return records, nil
}

// AnalyzeGroup analyzes a single group.
func (a *Analyzer) AnalyzeGroup(ctx context.Context, g Group) (SeriesRecord, error) {
	records, err := a.Analyze(ctx, []Group{g}, nil)
	if err != nil {
		return SeriesRecord{}, err
	}
	return records[0], nil
}

func (a *Analyzer) extractAll(ctx context.Context, files []media.MediaFile, progress func(done, total int)) (*csmap.CsMap[string, media.Extraction], error) {
	results := csmap.Create[string, media.Extraction]()
	if len(files) == 0 {
		return results, nil
	}

	workerCount := min(a.workers, len(files))
	workCh := make(chan media.MediaFile)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range workCh {
				results.Store(f.Path, a.Extract(f))
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(files))
					mu.Unlock()
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, f := range files {
			select {
			case workCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildRecord assembles a record from extraction results. Files are visited
// in sorted-name order; on an episode collision the first file keeps the key
// and later ones become unresolved.
func (a *Analyzer) buildRecord(g Group, results *csmap.CsMap[string, media.Extraction]) SeriesRecord {
	rec := SeriesRecord{
		Name:     SeriesName(g.Stems(), g.Dir),
		Dir:      g.Dir,
		Episodes: make(map[string]string),
		Tags:     []string{},
	}
	if n, ok := media.ParseSeasonMarker(filepath.Base(g.Dir)); ok {
		rec.Season = n
	}
	if len(g.Files) > 0 {
		rec.SampleFile = g.Files[0].Path
	}

	groupCounts := make(map[string]int)
	tagSet := make(map[string]struct{})
	for _, f := range g.Files {
		ex, ok := results.Load(f.Path)
		if !ok {
			ex = a.Extract(f)
		}

		if ex.ReleaseGroup != "" {
			groupCounts[ex.ReleaseGroup]++
		}
		for _, t := range ex.Tags {
			tagSet[t] = struct{}{}
		}

		if !ex.Resolved() {
			rec.Unresolved = append(rec.Unresolved, f.Path)
			continue
		}
		if first, exists := rec.Episodes[ex.Episode]; exists {
			msg := fmt.Sprintf("episode %s: %s collides with %s", ex.Episode, f.Name(), filepath.Base(first))
			rec.Warnings = append(rec.Warnings, msg)
			rec.Unresolved = append(rec.Unresolved, f.Path)
			if a.logger != nil {
				a.logger.WithFields(logrus.Fields{"dir": g.Dir, "episode": ex.Episode}).
					Warnf("%s collides with %s, keeping the first", f.Name(), filepath.Base(first))
			}
			continue
		}
		rec.Episodes[ex.Episode] = f.Path
		if rec.Pattern == "" {
			rec.Pattern = ex.Pattern
		}
	}

	rec.ReleaseGroup = mostFrequent(groupCounts)
	for t := range tagSet {
		rec.Tags = append(rec.Tags, t)
	}
	sort.Strings(rec.Tags)
	return rec
}

// mostFrequent returns the key with the highest count, preferring the
// lexicographically smallest on ties.
func mostFrequent(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
