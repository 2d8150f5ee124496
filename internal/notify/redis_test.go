package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/phisnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeList struct {
	mu     sync.Mutex
	lists  map[string][]string
	err    error
	closed bool
}

func newFakeList() *fakeList {
	return &fakeList{lists: make(map[string][]string)}
}

func (f *fakeList) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	for _, v := range values {
		var s string
		switch b := v.(type) {
		case []byte:
			s = string(b)
		case string:
			s = b
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeList) Close() error {
	f.closed = true
	return nil
}

func TestRedisPublisher_OnComplete(t *testing.T) {
	fake := newFakeList()
	pub := newPublisher(fake, "")
	assert.Equal(t, DefaultQueue, pub.Queue())

	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := models.UploadRecord{
		ID:          "rec-1",
		FileName:    "invoice.eml",
		Category:    models.CategoryText,
		Progress:    100,
		Status:      models.UploadStatusCompleted,
		Result:      &models.AnalysisResult{Risk: models.RiskHigh, Confidence: 94, Threats: []string{"Phishing email detected"}},
		CompletedAt: &done,
	}

	require.NoError(t, pub.OnComplete(context.Background(), rec))

	require.Len(t, fake.lists[DefaultQueue], 1)
	var ev CompletionEvent
	require.NoError(t, json.Unmarshal([]byte(fake.lists[DefaultQueue][0]), &ev))
	assert.Equal(t, "rec-1", ev.RecordID)
	assert.Equal(t, models.RiskHigh, ev.Risk)
	assert.Equal(t, 94, ev.Confidence)
	assert.Equal(t, []string{"Phishing email detected"}, ev.Threats)
	assert.True(t, done.Equal(ev.CompletedAt))
}

func TestRedisPublisher_ErrorRecord(t *testing.T) {
	fake := newFakeList()
	pub := newPublisher(fake, "alerts")

	now := time.Now()
	rec := models.UploadRecord{ID: "rec-2", Status: models.UploadStatusError, Error: "analysis failed", UpdatedAt: now}
	require.NoError(t, pub.OnComplete(context.Background(), rec))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(fake.lists["alerts"][0]), &raw))
	assert.Equal(t, "error", raw["status"])
	assert.Equal(t, "analysis failed", raw["error"])
	assert.NotContains(t, raw, "risk")
}

func TestRedisPublisher_PushFailure(t *testing.T) {
	fake := newFakeList()
	fake.err = errors.New("connection refused")
	pub := newPublisher(fake, "alerts")

	err := pub.OnComplete(context.Background(), models.UploadRecord{ID: "x", Status: models.UploadStatusCompleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts")
	assert.Contains(t, err.Error(), "connection refused")

	require.NoError(t, pub.Close())
	assert.True(t, fake.closed)
}
