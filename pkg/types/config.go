// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RetrieverKind selects the retrieval implementation.
type RetrieverKind string

const (
	// RetrieverArchive queries the arXiv API directly and downloads PDFs itself.
	RetrieverArchive RetrieverKind = "archive"
	// RetrieverService delegates retrieval to the paper retrieval microservice.
	RetrieverService RetrieverKind = "service"
)

// RelevancePolicy decides whether an oracle relevance response counts as relevant.
type RelevancePolicy string

const (
	// RelevanceAny accepts any non-empty oracle response.
	RelevanceAny RelevancePolicy = "any"
	// RelevanceKeyword requires the lower-cased response to contain "relevant".
	RelevanceKeyword RelevancePolicy = "keyword"
)

// SummarySource selects the text sent with the summary query.
type SummarySource string

const (
	SummaryFromAbstract SummarySource = "abstract"
	SummaryFromFullText SummarySource = "fulltext"
)

// OracleBackendKind selects the oracle implementation.
type OracleBackendKind string

const (
	OracleService OracleBackendKind = "service"
	OracleClaude  OracleBackendKind = "claude"
	OracleGemini  OracleBackendKind = "gemini"
)

// ExtractionBackend selects the PDF text extraction tool.
type ExtractionBackend string

const (
	ExtractionNative    ExtractionBackend = "native"
	ExtractionContainer ExtractionBackend = "container"
)

// OracleConfig holds settings for the relevance/summarization oracle.
type OracleConfig struct {
	// Backend selects service, claude, or gemini.
	Backend OracleBackendKind `mapstructure:"backend" yaml:"backend" validate:"oneof=service claude gemini"`

	// Retries is the total number of attempts per query (default 100).
	Retries int `mapstructure:"retries" yaml:"retries" validate:"min=1"`

	// Timeout bounds a single attempt (default 20s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	// RetryDelay is the fixed wait between attempts (default 2s).
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" validate:"gte=0"`

	// MaxPromptChars truncates full-text prompts; 0 disables truncation.
	MaxPromptChars int `mapstructure:"max_prompt_chars" yaml:"max_prompt_chars" validate:"gte=0"`

	// Model is the model identifier for the claude and gemini backends.
	Model string `mapstructure:"model" yaml:"model"`

	// APIKey authenticates the claude and gemini backends. Falls back to
	// ANTHROPIC_API_KEY or GOOGLE_API_KEY.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// RetrievalConfig holds retry settings for the retrieval microservice.
type RetrievalConfig struct {
	Retries    int           `mapstructure:"retries" yaml:"retries" validate:"min=1"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" validate:"gte=0"`
}

// ArchiveConfig holds settings for direct arXiv retrieval.
type ArchiveConfig struct {
	// PageSize is the number of entries requested per API page (default 5).
	PageSize int `mapstructure:"page_size" yaml:"page_size" validate:"min=1"`

	// PageDelay is the wait between consecutive page requests (default 3s).
	PageDelay time.Duration `mapstructure:"page_delay" yaml:"page_delay" validate:"gte=0"`

	// Retries is the retry count of the arXiv HTTP client (default 3).
	Retries int `mapstructure:"retries" yaml:"retries" validate:"gte=0"`

	// MaxResults caps the number of papers retrieved per run (default 100).
	MaxResults int `mapstructure:"max_results" yaml:"max_results" validate:"min=1"`

	// PaperDelay throttles the pipeline between papers (default 0).
	PaperDelay time.Duration `mapstructure:"paper_delay" yaml:"paper_delay" validate:"gte=0"`

	// Timeout is the HTTP request timeout (default 60s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	// UserAgent is sent with every archive request.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// ExtractionConfig holds settings for PDF text extraction.
type ExtractionConfig struct {
	Backend ExtractionBackend `mapstructure:"backend" yaml:"backend" validate:"oneof=native container"`

	// Image is the container image providing pdftotext.
	Image string `mapstructure:"image" yaml:"image"`
}

// NotifyConfig holds settings for the email microservice.
type NotifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" yaml:"format" validate:"oneof=logfmt json"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// Config enumerates every recognized configuration key.
type Config struct {
	SearchQuery string `mapstructure:"search_query" yaml:"search_query" validate:"required"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`

	GPTServiceHost string `mapstructure:"gpt_service_host" yaml:"gpt_service_host"`
	GPTServicePort int    `mapstructure:"gpt_service_port" yaml:"gpt_service_port" validate:"gte=0,lte=65535"`

	EmailServiceHost string `mapstructure:"email_service_host" yaml:"email_service_host" validate:"required"`
	EmailServicePort int    `mapstructure:"email_service_port" yaml:"email_service_port" validate:"required,gt=0,lte=65535"`
	EmailRecipient   string `mapstructure:"email_recipient" yaml:"email_recipient" validate:"required,email"`

	RelevanceQuery string `mapstructure:"relevance_query" yaml:"relevance_query" validate:"required"`
	SummaryQuery   string `mapstructure:"summary_query" yaml:"summary_query" validate:"required"`

	PaperRetrievalServiceHost string `mapstructure:"paper_retrieval_service_host" yaml:"paper_retrieval_service_host"`
	PaperRetrievalServicePort int    `mapstructure:"paper_retrieval_service_port" yaml:"paper_retrieval_service_port" validate:"gte=0,lte=65535"`

	Retriever       RetrieverKind   `mapstructure:"retriever" yaml:"retriever" validate:"oneof=archive service"`
	RelevancePolicy RelevancePolicy `mapstructure:"relevance_policy" yaml:"relevance_policy" validate:"oneof=any keyword"`
	SummarySource   SummarySource   `mapstructure:"summary_source" yaml:"summary_source" validate:"oneof=abstract fulltext"`
	ExtractFullText bool            `mapstructure:"extract_full_text" yaml:"extract_full_text"`
	LookbackDays    int             `mapstructure:"lookback_days" yaml:"lookback_days" validate:"min=1"`

	Oracle     OracleConfig     `mapstructure:"oracle" yaml:"oracle"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval" yaml:"retrieval"`
	Archive    ArchiveConfig    `mapstructure:"archive" yaml:"archive"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Notify     NotifyConfig     `mapstructure:"notify" yaml:"notify"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`

	// HistoryDB is the SQLite run-history path; empty disables history.
	HistoryDB string `mapstructure:"history_db" yaml:"history_db"`

	// MetricsFile is the Prometheus textfile path; empty disables export.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// SecretsDir holds one file per credential (anthropic-api-key,
	// google-api-key), used when oracle.api_key is unset.
	SecretsDir string `mapstructure:"secrets_dir" yaml:"secrets_dir"`
}
