package log

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want logrus.Level
	}{
		{"default", Options{}, logrus.InfoLevel},
		{"verbose", Options{Verbose: true}, logrus.DebugLevel},
		{"quiet", Options{Quiet: true}, logrus.WarnLevel},
		{"verbose wins", Options{Verbose: true, Quiet: true}, logrus.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Out = &bytes.Buffer{}
			if got := NewLogger(tt.opts).GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Quiet: true, Out: &buf})
	logger.Info("hidden")
	logger.WithField("dir", "/anime/Show").Warn("episode collision")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written in quiet mode: %q", out)
	}
	if !strings.Contains(out, "episode collision") || !strings.Contains(out, "dir=/anime/Show") {
		t.Errorf("warning missing from output: %q", out)
	}
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bangumi-tidy.log")
	logger := NewLogger(Options{File: path})
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Formatter = %T, want *logrus.JSONFormatter for file output", logger.Formatter)
	}
}
