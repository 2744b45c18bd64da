package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the diagnostic logger.
type Options struct {
	Verbose bool   // debug level
	Quiet   bool   // warnings and errors only
	File    string // rotate into this file instead of stderr
	Out     io.Writer
}

// NewLogger builds the diagnostic logger shared by the scanner, analyzer and
// mirror. It is separate from the session log, which only records filesystem
// changes so they can be undone.
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch {
	case opts.Verbose:
		logger.SetLevel(logrus.DebugLevel)
	case opts.Quiet:
		logger.SetLevel(logrus.WarnLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	switch {
	case opts.File != "":
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
		})
	case opts.Out != nil:
		logger.SetOutput(opts.Out)
	default:
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
