package media

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/sirupsen/logrus"
)

// WarningKind classifies a non-fatal scan problem.
type WarningKind int

const (
	// WarnUnreadable marks a directory that could not be listed or resolved.
	WarnUnreadable WarningKind = iota
	// WarnSymlinkCycle marks a symlink that points back at one of its own
	// ancestors.
	WarnSymlinkCycle
	// WarnDuplicateDir marks a symlinked directory whose target was already
	// walked through another path.
	WarnDuplicateDir
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnreadable:
		return "unreadable"
	case WarnSymlinkCycle:
		return "symlink-cycle"
	case WarnDuplicateDir:
		return "duplicate-dir"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// ScanWarning is recorded for a directory the scanner skipped.
type ScanWarning struct {
	Kind WarningKind
	Path string
	Err  error
}

func (w ScanWarning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Kind, w.Path, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Path)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions replaces the accepted video extensions.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = newExtensionSet(exts)
		}
	}
}

// WithProgress registers a callback invoked after each directory is listed
// with the number of media files it contained.
func WithProgress(fn func(dir string, files int)) Option {
	return func(s *Scanner) { s.progress = fn }
}

// WithLogger sets the logger used for scan warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scanner) { s.logger = l }
}

// Scanner enumerates media files below a root directory.
type Scanner struct {
	root       string
	extensions extensionSet
	progress   func(dir string, files int)
	logger     logrus.FieldLogger

	mu       sync.Mutex
	warnings []ScanWarning
}

// NewScanner validates root and returns a scanner for it. A missing root, a
// root that is not a directory, or one that cannot be listed is an error.
func NewScanner(root string, opts ...Option) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}
	if _, err := godirwalk.ReadDirnames(abs, nil); err != nil {
		return nil, fmt.Errorf("scan root %s is not readable: %w", root, err)
	}

	s := &Scanner{
		root:       abs,
		extensions: newExtensionSet(DefaultExtensions),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute scan root.
func (s *Scanner) Root() string { return s.root }

// Warnings returns the warnings recorded by the most recent traversal.
func (s *Scanner) Warnings() []ScanWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.warnings)
}

// Files lazily walks the tree depth first. Entries are read in name order so
// a given filesystem snapshot always yields the same sequence. Symlinks are
// followed, but each real directory is entered at most once, and symlinked
// directories are only entered after every real path, so files keep their
// real location when both lead to them. The walk stops between directories
// once ctx is done.
func (s *Scanner) Files(ctx context.Context) iter.Seq[MediaFile] {
	return func(yield func(MediaFile) bool) {
		s.mu.Lock()
		s.warnings = nil
		s.mu.Unlock()

		visited := make(map[string]struct{})
		scratch := make([]byte, 64*1024)
		stack := []string{s.root}
		var linked []string

		for len(stack) > 0 || len(linked) > 0 {
			if ctx.Err() != nil {
				return
			}
			if len(stack) == 0 {
				for i := len(linked) - 1; i >= 0; i-- {
					stack = append(stack, linked[i])
				}
				linked = nil
			}
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			real, err := filepath.EvalSymlinks(dir)
			if err != nil {
				s.warn(ScanWarning{Kind: WarnUnreadable, Path: dir, Err: err})
				continue
			}
			if _, seen := visited[real]; seen {
				kind := WarnDuplicateDir
				if isAncestor(real, filepath.Dir(dir)) {
					kind = WarnSymlinkCycle
				}
				s.warn(ScanWarning{Kind: kind, Path: dir})
				continue
			}
			visited[real] = struct{}{}

			entries, err := godirwalk.ReadDirents(dir, scratch)
			if err != nil {
				s.warn(ScanWarning{Kind: WarnUnreadable, Path: dir, Err: err})
				continue
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

			var subdirs []string
			files := 0
			for _, de := range entries {
				path := filepath.Join(dir, de.Name())
				isDir, isFile := de.IsDir(), de.IsRegular()
				symlink := de.IsSymlink()
				if symlink {
					info, err := os.Stat(path)
					if err != nil {
						s.debugf("skipping dangling symlink %s: %v", path, err)
						continue
					}
					isDir, isFile = info.IsDir(), info.Mode().IsRegular()
				}

				switch {
				case isDir && symlink:
					linked = append(linked, path)
				case isDir:
					subdirs = append(subdirs, path)
				case isFile && s.extensions.accepts(de.Name()):
					files++
					if !yield(NewMediaFile(path)) {
						return
					}
				}
			}

			if s.progress != nil {
				s.progress(dir, files)
			}
			// Push in reverse so the smallest name is popped first.
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}
}

// isAncestor reports whether the real path of dir is real or lies below it.
func isAncestor(real, dir string) bool {
	dirReal, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	if dirReal == real {
		return true
	}
	rel, err := filepath.Rel(real, dirReal)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Collect runs a full traversal and returns every file found.
func (s *Scanner) Collect(ctx context.Context) []MediaFile {
	return slices.Collect(s.Files(ctx))
}

func (s *Scanner) warn(w ScanWarning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.WithField("kind", w.Kind.String()).Warnf("skipping directory %s", w.Path)
	}
}

func (s *Scanner) debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}
