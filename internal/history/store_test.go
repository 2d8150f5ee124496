package history

import (
	"context"
	"testing"
	"time"

	"github.com/phisnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func completed(id string, cat models.Category, risk models.RiskLabel, confidence int, at time.Time) models.UploadRecord {
	return models.UploadRecord{
		ID:          id,
		FileName:    id + ".eml",
		Category:    cat,
		Progress:    100,
		Status:      models.UploadStatusCompleted,
		Result:      &models.AnalysisResult{Risk: risk, Confidence: confidence, Threats: []string{"a", "b"}},
		UpdatedAt:   at,
		CompletedAt: &at,
	}
}

func failed(id string, at time.Time) models.UploadRecord {
	return models.UploadRecord{
		ID:          id,
		FileName:    id + ".wav",
		Category:    models.CategoryAudio,
		Progress:    100,
		Status:      models.UploadStatusError,
		Error:       "analysis failed",
		UpdatedAt:   at,
		CompletedAt: &at,
	}
}

func TestStore_EmptySummary(t *testing.T) {
	store := newTestStore(t)

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.ByRisk)
	assert.Empty(t, summary.ByCategory)
	assert.Empty(t, summary.ByStatus)
	assert.Equal(t, 0.0, summary.AvgConfidence)

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestStore_Summary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Millisecond)

	require.NoError(t, store.OnComplete(ctx, completed("r1", models.CategoryText, models.RiskHigh, 94, base)))
	require.NoError(t, store.OnComplete(ctx, completed("r2", models.CategoryText, models.RiskLow, 90, base.Add(time.Second))))
	require.NoError(t, store.OnComplete(ctx, completed("r3", models.CategoryImage, models.RiskHigh, 80, base.Add(2*time.Second))))
	require.NoError(t, store.OnComplete(ctx, failed("r4", base.Add(3*time.Second))))

	summary, err := store.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, map[string]int{"HIGH_RISK": 2, "LOW_RISK": 1}, summary.ByRisk)
	assert.Equal(t, map[string]int{"text": 2, "image": 1, "audio": 1}, summary.ByCategory)
	assert.Equal(t, map[string]int{"completed": 3, "error": 1}, summary.ByStatus)
	assert.InDelta(t, 88.0, summary.AvgConfidence, 0.001)
}

func TestStore_DuplicateRecordIgnored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := completed("dup", models.CategoryVideo, models.RiskReview, 67, time.Now())

	require.NoError(t, store.OnComplete(ctx, rec))
	require.NoError(t, store.OnComplete(ctx, rec))

	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

func TestStore_Recent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Millisecond)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.OnComplete(ctx, completed(id, models.CategoryText, models.RiskLow, 89, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, store.OnComplete(ctx, failed("broken", base.Add(-time.Minute))))

	t.Run("newest first", func(t *testing.T) {
		rows, err := store.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "new", rows[0].RecordID)
		assert.Equal(t, "mid", rows[1].RecordID)
		assert.Equal(t, models.RiskLow, rows[0].Risk)
		assert.Equal(t, 2, rows[0].ThreatCount)
		assert.Equal(t, base.Add(2*time.Minute).UnixMilli(), rows[0].CompletedAt.UnixMilli())
	})

	t.Run("default limit returns everything", func(t *testing.T) {
		rows, err := store.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, rows, 4)

		last := rows[3]
		assert.Equal(t, "broken", last.RecordID)
		assert.Equal(t, models.UploadStatusError, last.Status)
		assert.Equal(t, models.RiskLabel(""), last.Risk)
		assert.Equal(t, 0, last.Confidence)
	})
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	err = store.OnComplete(context.Background(), failed("late", time.Now()))
	assert.Error(t, err)
}
