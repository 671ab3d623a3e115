package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provdir/internal/model"
)

func testDoc(runID string, startedAt time.Time) *model.RunDocument {
	return &model.RunDocument{
		RunID:       runID,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(2 * time.Second),
		AsOf:        startedAt,
		DurationMS:  2000,
		Records: []model.ProviderRecord{
			{ID: "p-001", Name: "Jane Smith", LicenseStatus: model.LicenseActive, Source: model.SourceSelfReported},
		},
		Results: []model.ValidationResult{
			{
				RecordID:          "p-001",
				Findings:          []model.Finding{model.NewFinding("last_verified_at", model.IssueStaleData)},
				QualityScore:      90,
				Confidence:        0.95,
				Status:            model.StatusExcellent,
				Priority:          model.PriorityNone,
				RecommendedAction: "Request re-verification",
			},
		},
		Report: model.BatchReport{
			TotalRecords:        1,
			StatusDistribution:  map[model.Status]int{model.StatusExcellent: 1},
			IssueFrequency:      []model.IssueCount{{IssueCode: model.IssueStaleData, Count: 1}},
			AverageQualityScore: 90,
			ReviewQueue:         []string{},
		},
	}
}

func TestFSSaveAndGetRoundTrip(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	started := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	doc := testDoc("run-aaa", started)
	require.NoError(t, s.SaveRun(ctx, doc))

	got, err := s.GetRun(ctx, "run-aaa")
	require.NoError(t, err)

	assert.Equal(t, doc.RunID, got.RunID)
	assert.True(t, got.StartedAt.Equal(doc.StartedAt))
	assert.Equal(t, doc.Records, got.Records)
	assert.Equal(t, doc.Results, got.Results)
	assert.Equal(t, doc.Report, got.Report)
}

func TestFSGetMissingRun(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = s.GetRun(context.Background(), "run-zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	// Hostile ids never touch the filesystem.
	_, err = s.GetRun(context.Background(), "../escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir)
	require.NoError(t, err)
	ctx := context.Background()

	started := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	doc := testDoc("run-aaa", started)
	require.NoError(t, s.SaveRun(ctx, doc))

	doc.DurationMS = 9999
	require.NoError(t, s.SaveRun(ctx, doc))

	got, err := s.GetRun(ctx, "run-aaa")
	require.NoError(t, err)
	assert.Equal(t, int64(9999), got.DurationMS)

	// No temp files survive a successful save.
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFSListRunsOrderAndFilter(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testDoc("run-old", base)))
	require.NoError(t, s.SaveRun(ctx, testDoc("run-mid", base.Add(24*time.Hour))))
	require.NoError(t, s.SaveRun(ctx, testDoc("run-new", base.Add(48*time.Hour))))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-new", all[0].RunID)
	assert.Equal(t, "run-mid", all[1].RunID)
	assert.Equal(t, "run-old", all[2].RunID)

	since, err := s.ListRuns(ctx, RunFilter{Since: base.Add(12 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "run-new", since[0].RunID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-new", limited[0].RunID)
}

func TestFSListSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir)
	require.NoError(t, err)
	ctx := context.Background()

	started := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testDoc("run-good", started)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run-bad.json"), []byte("{not json"), 0o644))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "run-good", all[0].RunID)
}

func TestFSLatestRun(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testDoc("run-old", base)))
	require.NoError(t, s.SaveRun(ctx, testDoc("run-new", base.Add(time.Hour))))

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-new", latest.RunID)
}

func TestFSDeleteRun(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	started := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testDoc("run-aaa", started)))

	require.NoError(t, s.DeleteRun(ctx, "run-aaa"))
	_, err = s.GetRun(ctx, "run-aaa")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteRun(ctx, "run-aaa"), ErrNotFound)
}
