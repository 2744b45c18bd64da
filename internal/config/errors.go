package config

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned by the Add* methods once a registry has been frozen.
var ErrFrozen = errors.New("registry is frozen")

// ConfigError reports a document that cannot be turned into a registry: an
// unreadable file, a malformed document, or an episode pattern that does not
// compile or does not have exactly one capturing group.
type ConfigError struct {
	Path  string // empty for runtime additions
	Field string // document field, empty when the whole document is bad
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := "config"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": %s %q", e.Field, e.Value)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
