package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Document is the on-disk shape of a registry. An absent field keeps only the
// built-in defaults for that collection; unknown fields are ignored.
type Document struct {
	ReleaseGroups   []string `json:"release_groups,omitempty" toml:"release_groups,omitempty"`
	Tags            []string `json:"tags,omitempty" toml:"tags,omitempty"`
	EpisodePatterns []string `json:"episode_patterns,omitempty" toml:"episode_patterns,omitempty"`
	VideoExtensions []string `json:"video_extensions,omitempty" toml:"video_extensions,omitempty"`
}

// ConfigDir returns ~/.bangumi-tidy.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".bangumi-tidy"), nil
}

// ConfigPath returns the path to the default config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load builds a registry from the document at path. An empty path yields the
// built-in vocabulary. Documents ending in .toml are decoded as TOML, anything
// else as JSON.
func Load(path string) (*Registry, error) {
	reg := NewRegistry()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	doc, err := DecodeDocument(data, isTOML(path))
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := reg.apply(doc, path); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadDefault loads the config at ConfigPath when it exists and falls back to
// the built-in vocabulary otherwise.
func LoadDefault() (*Registry, error) {
	path, err := ConfigPath()
	if err != nil {
		return NewRegistry(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	return Load(path)
}

// DecodeDocument parses raw document bytes.
func DecodeDocument(data []byte, asTOML bool) (Document, error) {
	var doc Document
	if asTOML {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse config file: %w", err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return doc, nil
}

// EncodeDocument renders doc in the requested format.
func EncodeDocument(doc Document, asTOML bool) ([]byte, error) {
	if asTOML {
		return toml.Marshal(doc)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes the user tier of the registry to path.
func (r *Registry) Save(path string) error {
	return SaveDocument(r.Document(), path)
}

// SaveDocument writes doc to path, creating parent directories as needed.
func SaveDocument(doc Document, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := EncodeDocument(doc, isTOML(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
