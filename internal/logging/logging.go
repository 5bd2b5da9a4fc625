// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the go-kit logger injected into every pipeline
// component. Log lines go to stderr and to a size-rotated log file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 5
)

// New builds a leveled logger writing to stderr and, when cfg.File is set,
// to a rotating file. The returned closer releases the file.
func New(cfg types.LogConfig, stderr io.Writer) (log.Logger, io.Closer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		out    io.Writer = stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, errors.Wrapf(err, "creating log directory for %s", cfg.File)
		}
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = defaultMaxSizeMB
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = defaultMaxBackups
		}
		rf := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		out = io.MultiWriter(stderr, rf)
		closer = rf
	}

	var logger log.Logger
	if cfg.Format == "json" {
		logger = log.NewJSONLogger(log.NewSyncWriter(out))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(out))
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	logger = level.NewFilter(logger, levelOption(cfg.Level))
	return logger, closer, nil
}

func levelOption(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
