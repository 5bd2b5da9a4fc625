// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one digest cycle: retrieve candidate papers, ask the
// oracle whether each is relevant, summarize the relevant ones, and send a
// single digest. Every external failure is contained at its call site and
// turned into a logged skip; Run never returns an error.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/samber/lo"

	"github.com/pdiddy/paper-digest/internal/oracle"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Retriever produces the candidate papers.
type Retriever interface {
	Retrieve(ctx context.Context, req types.RetrievalRequest) ([]types.Paper, error)
}

// Querier sends one prompt to the oracle, reporting false when no response
// could be obtained.
type Querier interface {
	Query(ctx context.Context, prompt string) (string, bool)
}

// Extractor returns the full text of a PDF.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (string, error)
}

// Notifier delivers the digest.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Settings are the run parameters of a Controller.
type Settings struct {
	Recipient       string
	RelevanceQuery  string
	SummaryQuery    string
	RelevancePolicy types.RelevancePolicy
	SummarySource   types.SummarySource
	ExtractFullText bool

	// MaxPromptChars truncates full-text summary prompts; 0 disables it.
	MaxPromptChars int

	// PaperDelay is slept between consecutive papers.
	PaperDelay time.Duration
}

// SettingsFromConfig derives controller settings from the loaded config.
// PaperDelay applies to the archive retriever only.
func SettingsFromConfig(cfg types.Config) Settings {
	s := Settings{
		Recipient:       cfg.EmailRecipient,
		RelevanceQuery:  cfg.RelevanceQuery,
		SummaryQuery:    cfg.SummaryQuery,
		RelevancePolicy: cfg.RelevancePolicy,
		SummarySource:   cfg.SummarySource,
		ExtractFullText: cfg.ExtractFullText,
		MaxPromptChars:  cfg.Oracle.MaxPromptChars,
	}
	if cfg.Retriever == types.RetrieverArchive {
		s.PaperDelay = cfg.Archive.PaperDelay
	}
	return s
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Retriever Retriever
	Oracle    Querier
	Extractor Extractor
	Notifier  Notifier
	Logger    log.Logger
}

// Controller sequences one pipeline run.
type Controller struct {
	settings  Settings
	retriever Retriever
	oracle    Querier
	extractor Extractor
	notifier  Notifier
	logger    log.Logger
	now       func() time.Time
}

// New returns a controller.
func New(settings Settings, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Controller{
		settings:  settings,
		retriever: deps.Retriever,
		oracle:    deps.Oracle,
		extractor: deps.Extractor,
		notifier:  deps.Notifier,
		logger:    log.With(logger, "component", "pipeline"),
		now:       time.Now,
	}
}

// SubjectLayout formats the run date in the digest subject.
const SubjectLayout = "2006-01-02"

// Subject returns the digest subject for the given day.
func Subject(day time.Time) string {
	return "Relevant Papers Found on " + day.Format(SubjectLayout)
}

// Run executes one cycle over req and reports what happened.
func (c *Controller) Run(ctx context.Context, req types.RetrievalRequest) Report {
	report := Report{Started: c.now()}
	defer func() {
		level.Info(c.logger).Log(
			"msg", "run finished",
			"outcome", report.Outcome,
			"retrieved", report.Retrieved,
			"relevant", report.Relevant,
			"fragments", len(report.Fragments),
		)
	}()

	papers, err := c.retriever.Retrieve(ctx, req)
	if err != nil {
		level.Error(c.logger).Log("msg", "retrieval failed", "err", err)
	}
	report.Retrieved = len(papers)
	if len(papers) == 0 {
		level.Info(c.logger).Log("msg", "no papers were retrieved")
		report.Outcome = OutcomeNoPapers
		report.Finished = c.now()
		return report
	}
	level.Info(c.logger).Log("msg", "papers retrieved", "count", len(papers))

	for i, p := range papers {
		if i > 0 && c.settings.PaperDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.settings.PaperDelay):
			}
		}
		if ctx.Err() != nil {
			level.Warn(c.logger).Log("msg", "run interrupted", "err", ctx.Err(), "remaining", len(papers)-i)
			break
		}

		eval, fragment := c.process(ctx, p)
		report.Evaluations = append(report.Evaluations, eval)
		if eval.Relevant {
			report.Relevant++
		}
		if eval.Included {
			report.Fragments = append(report.Fragments, fragment)
		}
	}

	if len(report.Fragments) == 0 {
		level.Info(c.logger).Log("msg", "no relevant papers found")
		report.Outcome = OutcomeNoDigest
		report.Finished = c.now()
		return report
	}

	level.Info(c.logger).Log("msg", "total relevant papers found", "count", len(report.Fragments))
	body := strings.Join(report.Fragments, "\n")
	// An interrupted run still delivers the fragments gathered so far.
	report.NotifyErr = c.notifier.Send(context.WithoutCancel(ctx), c.settings.Recipient, Subject(c.now()), body)
	report.Notified = report.NotifyErr == nil
	report.Outcome = OutcomeWithDigest
	report.Finished = c.now()
	return report
}

// process evaluates one paper, returning its evaluation and, when included,
// its digest fragment.
func (c *Controller) process(ctx context.Context, p types.Paper) (Evaluation, string) {
	logger := log.With(c.logger, "paper", p.ShortID())
	eval := Evaluation{ShortID: p.ShortID(), Title: p.Title(), Stage: StageRelevance}
	level.Info(logger).Log("msg", "processing paper", "path", p.PDFPath())

	resp, ok := c.oracle.Query(ctx, prompt(c.settings.RelevanceQuery, p.Summary()))
	if !ok || strings.TrimSpace(resp) == "" {
		level.Warn(logger).Log("msg", "skipping paper, no relevance response")
		eval.Reason = ReasonNoRelevanceResponse
		return eval, ""
	}
	if !oracle.IsRelevant(c.settings.RelevancePolicy, resp) {
		level.Info(logger).Log("msg", "paper not relevant")
		eval.Reason = ReasonNotRelevant
		return eval, ""
	}
	eval.Relevant = true

	var fullText string
	if c.settings.ExtractFullText {
		eval.Stage = StageExtraction
		text, err := c.extractor.Extract(ctx, p.PDFPath())
		if err != nil {
			level.Warn(logger).Log("msg", "skipping paper, text extraction failed", "err", err)
			eval.Reason = ReasonExtractionFailed
			return eval, ""
		}
		fullText = text
	}

	eval.Stage = StageSummary
	source := p.Summary()
	if c.settings.SummarySource == types.SummaryFromFullText && fullText != "" {
		source = truncateRunes(fullText, c.settings.MaxPromptChars)
	}
	summary, ok := c.oracle.Query(ctx, prompt(c.settings.SummaryQuery, source))
	if !ok || strings.TrimSpace(summary) == "" {
		level.Warn(logger).Log("msg", "skipping paper, no summary response")
		eval.Reason = ReasonNoSummaryResponse
		return eval, ""
	}

	eval.Stage = StageDigest
	eval.Included = true
	return eval, Fragment(p, summary)
}

func prompt(query, text string) string {
	return query + ": " + text
}

// Fragment formats the digest entry of one paper.
func Fragment(p types.Paper, summary string) string {
	authors := lo.Filter(p.Authors(), func(a string, _ int) bool { return a != "" })
	return fmt.Sprintf("Title: %s\nAuthors: %s\nPublished: %s\nAbstract: %s\nSummary: %s\n",
		p.Title(), strings.Join(authors, ", "), p.Published(), p.Summary(), strings.TrimSpace(summary))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
