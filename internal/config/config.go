// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the paper-digest configuration. Values
// come from defaults, a paper-digest.{yaml,json} file, and PAPER_DIGEST_*
// environment variables, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// ConfigName is the config file base name searched for without --config.
	ConfigName = "paper-digest"
	// EnvPrefix prefixes environment overrides: oracle.retries is
	// PAPER_DIGEST_ORACLE_RETRIES.
	EnvPrefix = "PAPER_DIGEST"
)

// defaults lists every recognized key. Required keys default to their zero
// value so environment overrides are seen by Unmarshal.
var defaults = map[string]any{
	"search_query":                 "",
	"output_dir":                   "",
	"gpt_service_host":             "",
	"gpt_service_port":             0,
	"email_service_host":           "",
	"email_service_port":           0,
	"email_recipient":              "",
	"relevance_query":              "",
	"summary_query":                "",
	"paper_retrieval_service_host": "",
	"paper_retrieval_service_port": 0,
	"retriever":                    string(types.RetrieverService),
	"relevance_policy":             string(types.RelevanceAny),
	"summary_source":               string(types.SummaryFromAbstract),
	"extract_full_text":            true,
	"lookback_days":                365,

	"oracle.backend":          string(types.OracleService),
	"oracle.retries":          100,
	"oracle.timeout":          20 * time.Second,
	"oracle.retry_delay":      2 * time.Second,
	"oracle.max_prompt_chars": 100000,
	"oracle.model":            "",
	"oracle.api_key":          "",

	"retrieval.retries":     100,
	"retrieval.timeout":     10 * time.Second,
	"retrieval.retry_delay": 2 * time.Second,

	"archive.page_size":   5,
	"archive.page_delay":  3 * time.Second,
	"archive.retries":     3,
	"archive.max_results": 100,
	"archive.paper_delay": time.Duration(0),
	"archive.timeout":     60 * time.Second,
	"archive.user_agent":  "",

	"extraction.backend": string(types.ExtractionNative),
	"extraction.image":   "minidocks/poppler:latest",

	"notify.timeout": 10 * time.Second,

	"log.level":       "info",
	"log.format":      "logfmt",
	"log.file":        "logs/paper-digest.log",
	"log.max_size_mb": 10,
	"log.max_backups": 5,

	"history_db":   "",
	"metrics_file": "",
	"secrets_dir":  ".secrets",
}

// SetDefaults registers every recognized key on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Read registers defaults, locates the config file, and binds the
// environment on v without decoding or validating. cfgFile, when non-empty,
// names the config file explicitly and must exist. Otherwise
// paper-digest.{yaml,json} is searched in ".", "./app" and
// "~/.config/paper-digest"; no file at all is fine if the environment
// supplies the required keys.
func Read(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("./app")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading config file")
		}
	}
	return nil
}

// Load reads configuration into v and returns the validated result.
// Credentials missing from the config are looked up in secrets_dir.
func Load(v *viper.Viper, cfgFile string, logger log.Logger) (types.Config, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := Read(v, cfgFile); err != nil {
		return types.Config{}, err
	}
	for _, key := range UnknownKeys(v) {
		level.Warn(logger).Log("msg", "ignoring unknown configuration key", "key", key, "file", v.ConfigFileUsed())
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, errors.Wrap(err, "decoding config")
	}

	if cfg.Oracle.APIKey == "" {
		s, err := secrets.Load(cfg.SecretsDir, logger)
		if err != nil {
			return types.Config{}, err
		}
		switch cfg.Oracle.Backend {
		case types.OracleClaude:
			cfg.Oracle.APIKey = s[secrets.AnthropicAPIKey]
		case types.OracleGemini:
			cfg.Oracle.APIKey = s[secrets.GoogleAPIKey]
		}
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// ValidationError lists every configuration problem found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct constraints and the cross-field rules that depend
// on the selected backends.
func Validate(cfg types.Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "validating config")
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if cfg.Oracle.Backend == types.OracleService || cfg.Oracle.Backend == "" {
		problems = append(problems, requireKeys(map[string]bool{
			"gpt_service_host": cfg.GPTServiceHost != "",
			"gpt_service_port": cfg.GPTServicePort > 0,
		})...)
	}
	if cfg.Retriever == types.RetrieverService || cfg.Retriever == "" {
		problems = append(problems, requireKeys(map[string]bool{
			"paper_retrieval_service_host": cfg.PaperRetrievalServiceHost != "",
			"paper_retrieval_service_port": cfg.PaperRetrievalServicePort > 0,
		})...)
	}
	if cfg.SummarySource == types.SummaryFromFullText && !cfg.ExtractFullText {
		problems = append(problems, "summary_source fulltext requires extract_full_text")
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// describe renders a field error with its dotted config key.
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.Index(key, "."); i >= 0 {
		key = key[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return "missing required key " + key
	case "email":
		return "key " + key + " is not a valid email address"
	default:
		if fe.Param() != "" {
			return "key " + key + " fails " + fe.Tag() + "=" + fe.Param()
		}
		return "key " + key + " fails " + fe.Tag()
	}
}

func requireKeys(present map[string]bool) []string {
	var problems []string
	for _, key := range sortedKeys(present) {
		if !present[key] {
			problems = append(problems, "missing required key "+key)
		}
	}
	return problems
}
