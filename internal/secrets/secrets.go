// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed contents
// are the value.
//
// Recognized keys: anthropic-api-key, google-api-key.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

const (
	AnthropicAPIKey = "anthropic-api-key"
	GoogleAPIKey    = "google-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, logger log.Logger) (map[string]string, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	secrets := make(map[string]string)
	if dir == "" {
		return secrets, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, errors.Wrapf(err, "reading secrets directory %s", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			level.Warn(logger).Log("msg", "could not read secret", "name", name, "err", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
