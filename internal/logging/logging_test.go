// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestNew_WritesStderrAndFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "paper-digest.log")

	var stderr bytes.Buffer
	logger, closer, err := New(types.LogConfig{Level: "info", Format: "logfmt", File: logFile}, &stderr)
	require.NoError(t, err)

	level.Info(logger).Log("msg", "retrieved papers", "count", 2)
	level.Debug(logger).Log("msg", "hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, stderr.String(), `msg="retrieved papers"`)
	assert.Contains(t, stderr.String(), "level=info")
	assert.NotContains(t, stderr.String(), "hidden")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "count=2")
}

func TestNew_JSONFormat(t *testing.T) {
	var stderr bytes.Buffer
	logger, closer, err := New(types.LogConfig{Level: "debug", Format: "json"}, &stderr)
	require.NoError(t, err)
	defer closer.Close()

	level.Debug(logger).Log("msg", "visible")
	assert.Contains(t, stderr.String(), `"msg":"visible"`)
	assert.Contains(t, stderr.String(), `"level":"debug"`)
}

func TestLeveled(t *testing.T) {
	var stderr bytes.Buffer
	logger, _, err := New(types.LogConfig{Level: "debug"}, &stderr)
	require.NoError(t, err)

	l := Leveled{Logger: logger}
	l.Warn("retrying request", "url", "http://x", "remaining")
	l.Error("giving up")

	out := stderr.String()
	assert.Contains(t, out, `msg="retrying request"`)
	assert.Contains(t, out, "url=http://x")
	assert.Contains(t, out, "remaining=")
	assert.Contains(t, out, "level=error")
}
