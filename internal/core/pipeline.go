package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"github.com/Digital-Shane/bangumi-tidy/internal/media"
	"github.com/sirupsen/logrus"
)

// ParseOptions tunes a pipeline run.
type ParseOptions struct {
	Workers   int
	Logger    logrus.FieldLogger
	OnScan    func(dir string, files int)
	OnAnalyze func(done, total int)
}

// ParseResult is the outcome of scanning and analyzing one root.
type ParseResult struct {
	Root     string
	Files    int
	Series   []SeriesRecord
	Warnings []media.ScanWarning
}

// Unresolved returns the number of files that did not get an episode key.
func (r *ParseResult) Unresolved() int {
	n := 0
	for _, s := range r.Series {
		n += len(s.Unresolved)
	}
	return n
}

// Parse scans root, groups files by directory and analyzes each group. reg is
// frozen before scanning starts. Only an invalid root or a cancelled context
// is an error; unreadable directories end up in Warnings.
func Parse(ctx context.Context, root string, reg *config.Registry, opts ParseOptions) (*ParseResult, error) {
	reg.Freeze()

	scanOpts := []media.Option{media.WithExtensions(reg.VideoExtensions())}
	if opts.OnScan != nil {
		scanOpts = append(scanOpts, media.WithProgress(opts.OnScan))
	}
	if opts.Logger != nil {
		scanOpts = append(scanOpts, media.WithLogger(opts.Logger))
	}

	scanner, err := media.NewScanner(root, scanOpts...)
	if err != nil {
		return nil, err
	}

	files := scanner.Collect(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if opts.Logger != nil {
		opts.Logger.WithField("root", scanner.Root()).Debugf("found %d media files", len(files))
	}

	analyzer := NewAnalyzer(reg, WithWorkers(opts.Workers), WithAnalyzerLogger(opts.Logger))
	records, err := analyzer.Analyze(ctx, GroupByDirectory(files), opts.OnAnalyze)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}

	return &ParseResult{
		Root:     scanner.Root(),
		Files:    len(files),
		Series:   records,
		Warnings: scanner.Warnings(),
	}, nil
}

// UnmergedShow keeps the season records of a show whose seasons conflict.
type UnmergedShow struct {
	Name     string
	Seasons  []SeriesRecord
	Conflict *MergeConflictError
}

// Library is a whole collection with seasons merged into shows.
type Library struct {
	Shows    []BangumiRecord
	Unmerged []UnmergedShow
}

// MergeLibrary groups records by series name, ignoring case and season
// markers, and merges each group with inferred season numbers. Shows whose
// seasons collide are kept as their separate records.
func MergeLibrary(records []SeriesRecord) Library {
	byName := make(map[string][]SeriesRecord)
	names := make(map[string]string)
	var order []string
	for _, r := range records {
		name := showName(r.Name)
		key := strings.ToLower(name)
		if _, ok := byName[key]; !ok {
			order = append(order, key)
			names[key] = name
		}
		byName[key] = append(byName[key], r)
	}
	sort.Strings(order)

	var lib Library
	for _, key := range order {
		group := byName[key]
		show, err := MergeInferred(group)
		if err != nil {
			var conflict *MergeConflictError
			if !errors.As(err, &conflict) {
				continue
			}
			lib.Unmerged = append(lib.Unmerged, UnmergedShow{Name: names[key], Seasons: group, Conflict: conflict})
			continue
		}
		show.Name = showName(show.Name)
		lib.Shows = append(lib.Shows, show)
	}
	return lib
}

// showName is a series name without its season marker. A name that is only
// a marker is kept whole.
func showName(name string) string {
	name = strings.TrimSpace(name)
	if stripped := media.StripSeasonMarker(name); stripped != "" {
		return stripped
	}
	return name
}

// ParseAndMerge runs Parse and merges the result into a Library.
func ParseAndMerge(ctx context.Context, root string, reg *config.Registry, opts ParseOptions) (*ParseResult, Library, error) {
	res, err := Parse(ctx, root, reg, opts)
	if err != nil {
		return nil, Library{}, err
	}
	lib := MergeLibrary(res.Series)
	if opts.Logger != nil {
		for _, u := range lib.Unmerged {
			opts.Logger.WithField("show", u.Name).Warnf("seasons not merged: %v", u.Conflict)
		}
	}
	return res, lib, nil
}
