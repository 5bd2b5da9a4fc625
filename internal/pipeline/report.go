// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/samber/lo"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	// OutcomeNoPapers means retrieval failed or returned nothing.
	OutcomeNoPapers Outcome = iota
	// OutcomeNoDigest means papers were evaluated but none produced a fragment.
	OutcomeNoDigest
	// OutcomeWithDigest means one digest was handed to the notifier.
	OutcomeWithDigest
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoPapers:
		return "no_papers"
	case OutcomeNoDigest:
		return "no_digest"
	case OutcomeWithDigest:
		return "with_digest"
	default:
		return "unknown"
	}
}

// Stage is the last pipeline step a paper reached.
type Stage string

const (
	StageRelevance  Stage = "relevance"
	StageExtraction Stage = "extraction"
	StageSummary    Stage = "summary"
	StageDigest     Stage = "digest"
)

// Skip reasons recorded on evaluations that did not reach the digest.
const (
	ReasonNoRelevanceResponse = "no_relevance_response"
	ReasonNotRelevant         = "not_relevant"
	ReasonExtractionFailed    = "extraction_failed"
	ReasonNoSummaryResponse   = "no_summary_response"
)

// Evaluation records what happened to one retrieved paper.
type Evaluation struct {
	ShortID  string
	Title    string
	Stage    Stage
	Relevant bool
	Included bool

	// Reason is empty for included papers.
	Reason string
}

// Report summarizes one run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Outcome  Outcome

	Retrieved int
	Relevant  int

	// Fragments holds the digest fragments in retrieval order.
	Fragments []string

	// Notified is true when the notifier accepted the digest.
	Notified  bool
	NotifyErr error

	Evaluations []Evaluation
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Skipped returns the number of evaluated papers that produced no fragment.
func (r Report) Skipped() int {
	return lo.CountBy(r.Evaluations, func(e Evaluation) bool { return !e.Included })
}

// SkipReasons counts skipped papers by reason.
func (r Report) SkipReasons() map[string]int {
	skipped := lo.Filter(r.Evaluations, func(e Evaluation, _ int) bool { return !e.Included })
	return lo.CountValuesBy(skipped, func(e Evaluation) string { return e.Reason })
}
