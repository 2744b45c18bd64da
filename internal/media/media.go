package media

import (
	"path/filepath"
	"strings"
)

// MediaFile is a video file found by the scanner.
type MediaFile struct {
	Path string // absolute
	Ext  string // lower-case, with leading dot
	Dir  string // parent directory of Path
}

// NewMediaFile describes the file at path.
func NewMediaFile(path string) MediaFile {
	return MediaFile{
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(path)),
		Dir:  filepath.Dir(path),
	}
}

// Name returns the base name including the extension.
func (f MediaFile) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the base name without its extension.
func (f MediaFile) Stem() string {
	name := f.Name()
	return name[:len(name)-len(filepath.Ext(name))]
}

// extensionSet holds lower-case extensions with a leading dot.
type extensionSet map[string]struct{}

func newExtensionSet(exts []string) extensionSet {
	set := make(extensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func (s extensionSet) accepts(name string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DefaultExtensions is used when a scanner is built without WithExtensions.
var DefaultExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm"}

// IsVideo reports whether filename has one of the default video extensions.
func IsVideo(filename string) bool {
	return newExtensionSet(DefaultExtensions).accepts(filename)
}
