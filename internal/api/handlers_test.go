package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/models"
	"github.com/phisnet/backend/internal/storage"
	"github.com/phisnet/backend/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, upload.Options{})

	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestThreatRoutes(t *testing.T) {
	env := newTestEnv(t, upload.Options{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantTotal  int
		wantCode   string
	}{
		{"all threats", "/api/threats", http.StatusOK, 5, ""},
		{"by type", "/api/threats?type=phishing", http.StatusOK, 3, ""},
		{"by type and modality", "/api/threats?type=deepfake&modality=audio", http.StatusOK, 1, ""},
		{"search", "/api/threats?q=MUFG", http.StatusOK, 2, ""},
		{"explicit all", "/api/threats?type=all&modality=all", http.StatusOK, 5, ""},
		{"no match", "/api/threats?type=malware", http.StatusOK, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, nil, "")
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp threatListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Len(t, resp.Threats, tt.wantTotal)
		})
	}

	t.Run("types", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/threats/types", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var types []models.ThreatType
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
		require.Len(t, types, 4)
		assert.Equal(t, "phishing", types[1].ID)
		assert.Equal(t, 892, types[1].Count)
	})

	t.Run("get one", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/threats/4", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var threat models.Threat
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &threat))
		assert.Equal(t, "Video Manipulation", threat.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/threats/42", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeAPIError(t, rec).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/threats/abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decodeAPIError(t, rec).Code)
	})
}

func TestDashboardRoutes(t *testing.T) {
	env := newTestEnv(t, upload.Options{})

	rec := env.do(t, http.MethodGet, "/api/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.DashboardSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1247, snap.Threats.Total)
	assert.Equal(t, 15420, snap.SystemStats.ProcessedToday)
	assert.Len(t, snap.RealtimeActivity, 5)
	assert.True(t, snap.Live)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantLive   bool
	}{
		{"pause", `{"live":false}`, http.StatusOK, "", false},
		{"resume", `{"live":true}`, http.StatusOK, "", true},
		{"missing field", `{}`, http.StatusBadRequest, "VALIDATION_ERROR", false},
		{"malformed body", `{"live":`, http.StatusBadRequest, "BAD_REQUEST", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/dashboard/live", strings.NewReader(tt.body), echo.MIMEApplicationJSON)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
				return
			}
			var snap models.DashboardSnapshot
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
			assert.Equal(t, tt.wantLive, snap.Live)
			assert.Equal(t, tt.wantLive, env.dashboard.Snapshot().Live)
		})
	}
}

func TestAnalyticsRoutes(t *testing.T) {
	env := newTestEnv(t, upload.Options{})

	body, contentType := multipartBody(t, "files", formFile{"a.eml", []byte("hello")}, formFile{"b.wav", []byte("RIFF")})
	rec := env.do(t, http.MethodPost, "/api/uploads", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, r := range env.manager.List() {
		for i := 0; i < 25; i++ {
			_, err := env.manager.Tick(r.ID)
			require.NoError(t, err)
		}
	}

	t.Run("summary", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/analytics/summary", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var summary models.AnalyticsSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, map[string]int{"HIGH_RISK": 2}, summary.ByRisk)
		assert.Equal(t, map[string]int{"text": 1, "audio": 1}, summary.ByCategory)
		assert.InDelta(t, 90.0, summary.AvgConfidence, 0.001)
	})

	t.Run("recent", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/analytics/recent?limit=1", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []models.AnalysisRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		assert.Len(t, rows, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/analytics/recent?limit=lots", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/analytics/recent?limit=-1", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeAPIError(t, rec).Code)
	})
}

func TestAnalyticsHandler_StoreFailure(t *testing.T) {
	handler := NewAnalyticsHandler(failingAnalytics{})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.HandleSummary(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Details, "database gone")
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api error", NewNotFoundError("upload", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped api error", errors.Join(errors.New("outer"), NewValidationError("id")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"echo error", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewErrorHandler(true)(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
		})
	}
}

func TestErrorHandler_HidesDetails(t *testing.T) {
	for _, show := range []bool{true, false} {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewErrorHandler(show)(errors.New("db password is hunter2"), c)

		apiErr := decodeAPIError(t, rec)
		assert.Equal(t, "UNKNOWN_ERROR", apiErr.Code)
		if show {
			assert.Equal(t, "db password is hunter2", apiErr.Details)
		} else {
			assert.Empty(t, apiErr.Details)
		}
	}
}

func TestFromDomainError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, fromDomainError(upload.ErrRecordNotFound, "upload", "x").Status)
	assert.Equal(t, http.StatusNotFound, fromDomainError(storage.ErrFileNotFound, "blob", "x").Status)
	assert.Equal(t, http.StatusServiceUnavailable, fromDomainError(upload.ErrClosed, "upload", "x").Status)
	assert.Equal(t, http.StatusInternalServerError, fromDomainError(context.Canceled, "upload", "x").Status)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, upload.Options{TickInterval: time.Hour})

	rec := env.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP_ERROR", decodeAPIError(t, rec).Code)
}
