package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger
type Options struct {
	Verbose bool
	File    string // optional rotating log file, written in addition to stderr
}

// Setup configures the logrus standard logger to write to stderr. The returned
// closer closes the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	return Configure(logrus.StandardLogger(), os.Stderr, opts)
}

// Configure sets formatter, level and output of logger
func Configure(logger *logrus.Logger, w io.Writer, opts Options) (io.Closer, error) {
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !opts.Verbose,
		FullTimestamp:    true,
	})

	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if opts.File == "" {
		logger.SetOutput(w)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(w, rotator))
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
