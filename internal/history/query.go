// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.yaml.in/yaml/v3"
)

// Run is one stored run.
type Run struct {
	ID          string       `yaml:"id"`
	Started     time.Time    `yaml:"started"`
	Finished    time.Time    `yaml:"finished"`
	Outcome     string       `yaml:"outcome"`
	Retrieved   int          `yaml:"retrieved"`
	Relevant    int          `yaml:"relevant"`
	Fragments   int          `yaml:"fragments"`
	Notified    bool         `yaml:"notified"`
	NotifyError string       `yaml:"notify_error,omitempty"`
	Evaluations []Evaluation `yaml:"evaluations,omitempty"`
}

// Evaluation is one stored per-paper result.
type Evaluation struct {
	ShortID  string `yaml:"short_id"`
	Title    string `yaml:"title"`
	Stage    string `yaml:"stage"`
	Relevant bool   `yaml:"relevant"`
	Included bool   `yaml:"included"`
	Reason   string `yaml:"reason,omitempty"`
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, outcome, retrieved, relevant, fragments, notified, COALESCE(notify_error, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Outcome, &r.Retrieved, &r.Relevant, &r.Fragments, &r.Notified, &r.NotifyError); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "iterating runs")
}

// Evaluations returns the per-paper results of run id in evaluation order.
func (s *Store) Evaluations(ctx context.Context, runID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(short_id, ''), COALESCE(title, ''), stage, relevant, included, COALESCE(reason, '')
		 FROM evaluations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying evaluations for %s", runID)
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.ShortID, &e.Title, &e.Stage, &e.Relevant, &e.Included, &e.Reason); err != nil {
			return nil, errors.Wrap(err, "scanning evaluation")
		}
		evals = append(evals, e)
	}
	return evals, errors.Wrap(rows.Err(), "iterating evaluations")
}

// ExportYAML writes the n most recent runs with their evaluations to w.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, n int) error {
	runs, err := s.Recent(ctx, n)
	if err != nil {
		return err
	}
	for i := range runs {
		evals, err := s.Evaluations(ctx, runs[i].ID)
		if err != nil {
			return err
		}
		runs[i].Evaluations = evals
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return errors.Wrap(enc.Encode(runs), "marshaling YAML")
}

// IncludedTitles returns the titles of papers that made it into the digest.
func IncludedTitles(evals []Evaluation) []string {
	included := lo.Filter(evals, func(e Evaluation, _ int) bool { return e.Included })
	return lo.Map(included, func(e Evaluation, _ int) string { return e.Title })
}
