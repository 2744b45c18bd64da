package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/bangumi-tidy/internal/log"
	"github.com/Digital-Shane/treeview"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

// LinkMode selects how episodes are mirrored.
type LinkMode string

const (
	LinkAuto LinkMode = "auto" // hard link, symlink when that fails
	LinkHard LinkMode = "hard"
	LinkSoft LinkMode = "soft"
)

// ParseLinkMode validates a --mode flag value.
func ParseLinkMode(s string) (LinkMode, error) {
	switch m := LinkMode(strings.ToLower(s)); m {
	case LinkAuto, LinkHard, LinkSoft:
		return m, nil
	case "":
		return LinkAuto, nil
	}
	return "", fmt.Errorf("unknown link mode %q (want auto, hard or soft)", s)
}

// ErrTargetLocked is returned when another run holds the mirror target.
var ErrTargetLocked = errors.New("mirror target is locked by another run")

const lockFileName = ".bangumi-tidy.lock"

type EntryKind int

const (
	EntryShow EntryKind = iota
	EntrySeason
	EntryEpisode
)

type MirrorStatus int

const (
	MirrorPending MirrorStatus = iota
	MirrorCreated
	MirrorExisting
	MirrorFailed
	MirrorSkipped
)

// MirrorEntry is one directory or link of a mirror plan.
type MirrorEntry struct {
	Kind   EntryKind
	Source string // episodes only
	Dest   string
	Status MirrorStatus
	Err    error
}

// MirrorPlan is the tree of directories and links to create under Target:
// shows at depth 0, seasons at depth 1, episodes at depth 2.
type MirrorPlan struct {
	Target string
	Tree   *treeview.Tree[MirrorEntry]
	Links  int
}

// PlanMirror lays out <target>/<Show>/Season NN/<Show> - SxxEyy<ext> for every
// mapped episode of shows. Unresolved files are not part of the plan.
func PlanMirror(target string, shows []BangumiRecord) (*MirrorPlan, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %s: %w", target, err)
	}

	plan := &MirrorPlan{Target: absTarget}
	var roots []*treeview.Node[MirrorEntry]
	showNodes := make(map[string]*treeview.Node[MirrorEntry])

	for _, show := range shows {
		name, err := SanitizeFilename(show.Name)
		if err != nil {
			return nil, fmt.Errorf("show %q: %w", show.Name, err)
		}

		showDir := filepath.Join(absTarget, name)
		showNode, ok := showNodes[showDir]
		if !ok {
			showNode = treeview.NewNode(showDir, name, MirrorEntry{Kind: EntryShow, Dest: showDir})
			showNodes[showDir] = showNode
			roots = append(roots, showNode)
		}

		seasonNodes := make(map[int]*treeview.Node[MirrorEntry])
		for _, child := range showNode.Children() {
			var n int
			if _, err := fmt.Sscanf(child.Name(), "Season %d", &n); err == nil {
				seasonNodes[n] = child
			}
		}

		for _, key := range show.Keys() {
			src := show.Episodes[key]
			seasonNode, ok := seasonNodes[key.Season]
			if !ok {
				dir := filepath.Join(showDir, seasonDirName(key.Season))
				seasonNode = treeview.NewNode(dir, seasonDirName(key.Season), MirrorEntry{Kind: EntrySeason, Dest: dir})
				showNode.AddChild(seasonNode)
				seasonNodes[key.Season] = seasonNode
			}

			file := episodeFileName(name, key, strings.ToLower(filepath.Ext(src)))
			dest := filepath.Join(seasonNode.Data().Dest, file)
			seasonNode.AddChild(treeview.NewNode(dest, file, MirrorEntry{Kind: EntryEpisode, Source: src, Dest: dest}))
			plan.Links++
		}
	}

	plan.Tree = treeview.NewTree(roots)
	return plan, nil
}

// ShowsFromLibrary returns the merged shows of lib plus one single-season
// show per record of every unmerged show.
func ShowsFromLibrary(lib Library) []BangumiRecord {
	shows := append([]BangumiRecord(nil), lib.Shows...)
	for _, u := range lib.Unmerged {
		for _, r := range u.Seasons {
			// A single season cannot conflict with itself.
			show, err := Merge([]Season{{Number: InferSeason(r), Record: r}})
			if err == nil {
				shows = append(shows, show)
			}
		}
	}
	return shows
}

// MirrorSummary counts the outcome of Execute.
type MirrorSummary struct {
	Created  int
	Existing int
	Failed   int
	Skipped  int
	Errors   []error
}

// Mirror creates link farms from plans.
type Mirror struct {
	Mode   LinkMode
	Logger logrus.FieldLogger
}

// Execute creates the plan's directories and links, parents before children.
// The target holds a lock file for the duration so two runs cannot interleave.
// Already present links to the same source count as existing, not failures.
// Every change is recorded in the current session log.
func (m *Mirror) Execute(ctx context.Context, plan *MirrorPlan) (MirrorSummary, error) {
	var summary MirrorSummary

	if _, err := m.ensureDir(plan.Target); err != nil {
		return summary, err
	}

	lockPath := filepath.Join(plan.Target, lockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("failed to lock %s: %w", plan.Target, err)
	}
	if !locked {
		return summary, ErrTargetLocked
	}
	defer func() {
		lock.Unlock()
		os.Remove(lockPath)
	}()

	for ni := range plan.Tree.BreadthFirst(ctx) {
		entry := ni.Node.Data()

		if parent := ni.Node.Parent(); parent != nil {
			if ps := parent.Data().Status; ps == MirrorFailed || ps == MirrorSkipped {
				entry.Status = MirrorSkipped
				summary.Skipped++
				continue
			}
		}

		switch entry.Kind {
		case EntryShow, EntrySeason:
			created, err := m.ensureDir(entry.Dest)
			switch {
			case err != nil:
				entry.Status, entry.Err = MirrorFailed, err
			case created:
				entry.Status = MirrorCreated
			default:
				entry.Status = MirrorExisting
			}
		case EntryEpisode:
			existing, err := m.link(entry.Source, entry.Dest)
			switch {
			case err != nil:
				entry.Status, entry.Err = MirrorFailed, err
				summary.Failed++
				summary.Errors = append(summary.Errors, err)
				m.warnf("link %s: %v", entry.Dest, err)
			case existing:
				entry.Status = MirrorExisting
				summary.Existing++
			default:
				entry.Status = MirrorCreated
				summary.Created++
			}
		}
		if entry.Kind != EntryEpisode && entry.Err != nil {
			summary.Errors = append(summary.Errors, entry.Err)
			m.warnf("create %s: %v", entry.Dest, entry.Err)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// ensureDir creates dir when missing and reports whether it did.
func (m *Mirror) ensureDir(dir string) (bool, error) {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		err = fmt.Errorf("failed to create directory %s: %w", dir, err)
		log.LogCreateDir(dir, false, err)
		return false, err
	}
	log.LogCreateDir(dir, true, nil)
	return true, nil
}

// link mirrors src at dest. existing is true when dest already refers to src.
func (m *Mirror) link(src, dest string) (existing bool, err error) {
	if info, err := os.Lstat(dest); err == nil {
		if sameTarget(src, dest, info) {
			return true, nil
		}
		return false, fmt.Errorf("destination %s already exists", dest)
	}

	switch m.Mode {
	case LinkSoft:
		return false, m.symlink(src, dest)
	case LinkHard:
		return false, m.hardlink(src, dest)
	default:
		err := os.Link(src, dest)
		if err == nil {
			log.LogLink(src, dest, true, nil)
			return false, nil
		}
		m.debugf("hard link %s failed, falling back to symlink: %v", dest, err)
		return false, m.symlink(src, dest)
	}
}

func (m *Mirror) hardlink(src, dest string) error {
	if err := os.Link(src, dest); err != nil {
		err = fmt.Errorf("failed to create hard link (possibly cross-filesystem or unsupported): %w", err)
		log.LogLink(src, dest, false, err)
		return err
	}
	log.LogLink(src, dest, true, nil)
	return nil
}

func (m *Mirror) symlink(src, dest string) error {
	if err := os.Symlink(src, dest); err != nil {
		err = fmt.Errorf("failed to create symlink: %w", err)
		log.LogSymlink(src, dest, false, err)
		return err
	}
	log.LogSymlink(src, dest, true, nil)
	return nil
}

func sameTarget(src, dest string, destInfo os.FileInfo) bool {
	if destInfo.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(dest)
		return err == nil && target == src
	}
	srcInfo, err := os.Stat(src)
	return err == nil && os.SameFile(srcInfo, destInfo)
}

func (m *Mirror) warnf(format string, args ...any) {
	if m.Logger != nil {
		m.Logger.Warnf(format, args...)
	}
}

func (m *Mirror) debugf(format string, args ...any) {
	if m.Logger != nil {
		m.Logger.Debugf(format, args...)
	}
}
