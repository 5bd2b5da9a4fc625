// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

func sampleReport(id string, started time.Time) pipeline.Report {
	return pipeline.Report{
		RunID:     id,
		Started:   started,
		Finished:  started.Add(90 * time.Second),
		Outcome:   pipeline.OutcomeWithDigest,
		Retrieved: 2,
		Relevant:  1,
		Fragments: []string{"Title: A\n"},
		Notified:  true,
		Evaluations: []pipeline.Evaluation{
			{ShortID: "2610.00001v1", Title: "A", Stage: pipeline.StageDigest, Relevant: true, Included: true},
			{ShortID: "2610.00002v1", Title: "B", Stage: pipeline.StageRelevance, Reason: pipeline.ReasonNoRelevanceResponse},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, sampleReport("run-1", base)))
	second := sampleReport("run-2", base.Add(24*time.Hour))
	second.Outcome = pipeline.OutcomeNoDigest
	second.Notified = false
	second.NotifyErr = errors.New("connection refused")
	require.NoError(t, s.Record(ctx, second))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "no_digest", runs[0].Outcome)
	assert.Equal(t, "connection refused", runs[0].NotifyError)
	assert.False(t, runs[0].Notified)

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, base, runs[1].Started)
	assert.Equal(t, 90*time.Second, runs[1].Finished.Sub(runs[1].Started))
	assert.Equal(t, 2, runs[1].Retrieved)
	assert.Equal(t, 1, runs[1].Relevant)
	assert.Equal(t, 1, runs[1].Fragments)
	assert.True(t, runs[1].Notified)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestEvaluations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, sampleReport("run-1", time.Now())))

	evals, err := s.Evaluations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, Evaluation{ShortID: "2610.00001v1", Title: "A", Stage: "digest", Relevant: true, Included: true}, evals[0])
	assert.Equal(t, "no_relevance_response", evals[1].Reason)
	assert.Equal(t, []string{"A"}, IncludedTitles(evals))
}

func TestRecordRejectsDuplicateRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, sampleReport("run-1", time.Now())))
	assert.Error(t, s.Record(ctx, sampleReport("run-1", time.Now())))

	evals, err := s.Evaluations(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, evals, 2, "failed insert must not leave partial rows")
}

func TestRecordRequiresRunID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Record(context.Background(), pipeline.Report{}))
}

func TestRecordReportOpensAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	require.NoError(t, RecordReport(ctx, path, sampleReport("run-1", time.Now())))
	require.NoError(t, RecordReport(ctx, path, sampleReport("run-2", time.Now().Add(time.Minute))))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestExportYAML(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, sampleReport("run-1", time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC))))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, 5))

	var runs []Run
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Len(t, runs[0].Evaluations, 2)
}
