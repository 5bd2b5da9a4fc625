// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Leveled adapts a go-kit logger to the LeveledLogger interface expected by
// go-retryablehttp, so its request/retry messages land in the same stream.
type Leveled struct {
	Logger log.Logger
}

func (l Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.log(level.Error(l.Logger), msg, keysAndValues)
}

func (l Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.log(level.Info(l.Logger), msg, keysAndValues)
}

func (l Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.log(level.Debug(l.Logger), msg, keysAndValues)
}

func (l Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.log(level.Warn(l.Logger), msg, keysAndValues)
}

func (l Leveled) log(logger log.Logger, msg string, kv []interface{}) {
	args := make([]interface{}, 0, len(kv)+2)
	args = append(args, "msg", msg)
	args = append(args, kv...)
	if len(args)%2 != 0 {
		args = append(args, log.ErrMissingValue)
	}
	_ = logger.Log(args...)
}
