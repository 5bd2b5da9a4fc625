// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const minimalYAML = `
search_query: "cat:cs.CL AND abs:retrieval"
output_dir: ./downloads
gpt_service_host: gpt
gpt_service_port: 8000
email_service_host: mail
email_service_port: 8025
email_recipient: reader@example.com
relevance_query: Is this paper about retrieval augmented generation
summary_query: Summarize the paper in five sentences
paper_retrieval_service_host: papers
paper_retrieval_service_port: 8001
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "paper-digest.yaml", minimalYAML)

	cfg, err := Load(viper.New(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, "cat:cs.CL AND abs:retrieval", cfg.SearchQuery)
	assert.Equal(t, types.RetrieverService, cfg.Retriever)
	assert.Equal(t, types.RelevanceAny, cfg.RelevancePolicy)
	assert.Equal(t, types.SummaryFromAbstract, cfg.SummarySource)
	assert.True(t, cfg.ExtractFullText)
	assert.Equal(t, 365, cfg.LookbackDays)

	assert.Equal(t, types.OracleService, cfg.Oracle.Backend)
	assert.Equal(t, 100, cfg.Oracle.Retries)
	assert.Equal(t, 20*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Oracle.RetryDelay)

	assert.Equal(t, 100, cfg.Retrieval.Retries)
	assert.Equal(t, 10*time.Second, cfg.Retrieval.Timeout)

	assert.Equal(t, 5, cfg.Archive.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Archive.PageDelay)
	assert.Equal(t, 3, cfg.Archive.Retries)

	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.HistoryDB)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, "paper-digest.yaml", minimalYAML+`
retriever: archive
relevance_policy: keyword
oracle:
  retries: 5
  timeout: 3s
archive:
  page_delay: 500ms
`)

	cfg, err := Load(viper.New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, types.RetrieverArchive, cfg.Retriever)
	assert.Equal(t, types.RelevanceKeyword, cfg.RelevancePolicy)
	assert.Equal(t, 5, cfg.Oracle.Retries)
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Archive.PageDelay)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"search_query": "q", "output_dir": "out",
		"gpt_service_host": "gpt", "gpt_service_port": 8000,
		"email_service_host": "mail", "email_service_port": 8025,
		"email_recipient": "a@example.com",
		"relevance_query": "r", "summary_query": "s",
		"retriever": "archive"
	}`)

	cfg, err := Load(viper.New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", cfg.SearchQuery)
	assert.Equal(t, 8025, cfg.EmailServicePort)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "paper-digest.yaml", minimalYAML)
	t.Setenv("PAPER_DIGEST_SEARCH_QUERY", "cat:cs.IR")
	t.Setenv("PAPER_DIGEST_ORACLE_RETRIES", "7")
	t.Setenv("PAPER_DIGEST_EXTRACT_FULL_TEXT", "false")

	cfg, err := Load(viper.New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "cat:cs.IR", cfg.SearchQuery)
	assert.Equal(t, 7, cfg.Oracle.Retries)
	assert.False(t, cfg.ExtractFullText)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	env := map[string]string{
		"SEARCH_QUERY":       "q",
		"OUTPUT_DIR":         "out",
		"GPT_SERVICE_HOST":   "gpt",
		"GPT_SERVICE_PORT":   "8000",
		"EMAIL_SERVICE_HOST": "mail",
		"EMAIL_SERVICE_PORT": "8025",
		"EMAIL_RECIPIENT":    "a@example.com",
		"RELEVANCE_QUERY":    "r",
		"SUMMARY_QUERY":      "s",
		"RETRIEVER":          "archive",
	}
	for k, v := range env {
		t.Setenv(EnvPrefix+"_"+k, v)
	}

	cfg, err := Load(viper.New(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.GPTServicePort)
	assert.Equal(t, types.RetrieverArchive, cfg.Retriever)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadReportsMissingKeys(t *testing.T) {
	path := writeConfig(t, "paper-digest.yaml", "search_query: q\n")

	_, err := Load(viper.New(), path, nil)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, key := range []string{
		"output_dir", "email_service_host", "email_service_port", "email_recipient",
		"relevance_query", "summary_query", "gpt_service_host", "paper_retrieval_service_host",
	} {
		assert.Contains(t, err.Error(), "missing required key "+key)
	}
	assert.NotContains(t, err.Error(), "missing required key search_query")
}

func TestLoadSecretsFallback(t *testing.T) {
	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "anthropic-api-key"), []byte("sk-ant-test\n"), 0o600))
	path := writeConfig(t, "paper-digest.yaml", minimalYAML+`
secrets_dir: `+secretsDir+`
oracle:
  backend: claude
  model: claude-sonnet-4-20250514
`)

	cfg, err := Load(viper.New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", cfg.Oracle.APIKey)
}

func validConfig() types.Config {
	return types.Config{
		SearchQuery:               "q",
		OutputDir:                 "out",
		GPTServiceHost:            "gpt",
		GPTServicePort:            8000,
		EmailServiceHost:          "mail",
		EmailServicePort:          8025,
		EmailRecipient:            "a@example.com",
		RelevanceQuery:            "r",
		SummaryQuery:              "s",
		PaperRetrievalServiceHost: "papers",
		PaperRetrievalServicePort: 8001,
		Retriever:                 types.RetrieverService,
		RelevancePolicy:           types.RelevanceAny,
		SummarySource:             types.SummaryFromAbstract,
		ExtractFullText:           true,
		LookbackDays:              365,
		Oracle:                    types.OracleConfig{Backend: types.OracleService, Retries: 100, Timeout: 20 * time.Second},
		Retrieval:                 types.RetrievalConfig{Retries: 100, Timeout: 10 * time.Second},
		Archive:                   types.ArchiveConfig{PageSize: 5, MaxResults: 100, Timeout: time.Minute},
		Extraction:                types.ExtractionConfig{Backend: types.ExtractionNative},
		Notify:                    types.NotifyConfig{Timeout: 10 * time.Second},
		Log:                       types.LogConfig{Level: "info", Format: "logfmt"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Config)
		want   string
	}{
		{"valid", func(*types.Config) {}, ""},
		{"bad email", func(c *types.Config) { c.EmailRecipient = "not-an-email" }, "email_recipient is not a valid email"},
		{"zero retries", func(c *types.Config) { c.Oracle.Retries = 0 }, "oracle.retries fails min=1"},
		{"unknown policy", func(c *types.Config) { c.RelevancePolicy = "maybe" }, "relevance_policy fails oneof"},
		{"fulltext without extraction", func(c *types.Config) {
			c.SummarySource = types.SummaryFromFullText
			c.ExtractFullText = false
		}, "summary_source fulltext requires extract_full_text"},
		{"archive retriever needs no service", func(c *types.Config) {
			c.Retriever = types.RetrieverArchive
			c.PaperRetrievalServiceHost = ""
			c.PaperRetrievalServicePort = 0
		}, ""},
		{"claude oracle needs no gpt service", func(c *types.Config) {
			c.Oracle.Backend = types.OracleClaude
			c.GPTServiceHost = ""
			c.GPTServicePort = 0
		}, ""},
		{"service retriever needs port", func(c *types.Config) { c.PaperRetrievalServicePort = 0 }, "missing required key paper_retrieval_service_port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "oracle.retries")
	assert.Contains(t, keys, "email_recipient")
	assert.IsIncreasing(t, keys)
}

func TestLoadWarnsOnUnknownKeys(t *testing.T) {
	path := writeConfig(t, "paper-digest.yaml", minimalYAML+`
sumary_query: typo
oracle:
  retires: 5
`)

	var buf bytes.Buffer
	v := viper.New()
	_, err := Load(v, path, log.NewLogfmtLogger(&buf))
	require.NoError(t, err)

	assert.Equal(t, []string{"oracle.retires", "sumary_query"}, UnknownKeys(v))
	assert.Contains(t, buf.String(), "key=oracle.retires")
	assert.Contains(t, buf.String(), "key=sumary_query")
	assert.NotContains(t, buf.String(), "key=search_query")
}
