package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/catalog"
	"github.com/phisnet/backend/internal/dashboard"
	"github.com/phisnet/backend/internal/history"
	"github.com/phisnet/backend/internal/models"
	"github.com/phisnet/backend/internal/monitoring"
	"github.com/phisnet/backend/internal/reports"
	"github.com/phisnet/backend/internal/testutil"
	"github.com/phisnet/backend/internal/threats"
	"github.com/phisnet/backend/internal/upload"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	e         *echo.Echo
	manager   *upload.Manager
	store     *testutil.MockStorage
	history   *history.Store
	dashboard *dashboard.Live
}

// newTestEnv wires every handler against real services. The upload tickers
// are parked so records only move when the test ticks them.
func newTestEnv(t *testing.T, opts upload.Options) *testEnv {
	t.Helper()

	if opts.TickInterval == 0 {
		opts.TickInterval = time.Hour
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}

	hist, err := history.NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	store := testutil.NewMockStorage()
	manager := upload.NewManager(store, testutil.NewStubClassifier(models.RiskHigh), opts, hist)
	t.Cleanup(manager.Close)

	cat := catalog.Default()
	live := dashboard.NewLive(cat.Dashboard, time.Hour, 1, true)

	e := echo.New()
	SetupMiddleware(e, true)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Uploads:        manager,
		Blobs:          store,
		MaxFileSize:    opts.MaxFileSize,
		Threats:        threats.NewFeed(cat.Threats, cat.ThreatTypes),
		Dashboard:      live,
		Analytics:      hist,
		Monitoring:     monitoring.NewBoard(cat.Monitoring.Components, cat.Monitoring.Alerts),
		Reports:        reports.NewLibrary(cat.ReportTypes, cat.Reports, cat.GreenIT),
		Version:        "test",
		WSPingInterval: time.Second,
	}))

	return &testEnv{e: e, manager: manager, store: store, history: hist, dashboard: live}
}

func (env *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

type formFile struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, field string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

// failingAnalytics always errors.
type failingAnalytics struct{}

func (failingAnalytics) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	return nil, errors.New("database gone")
}

func (failingAnalytics) Recent(ctx context.Context, limit int) ([]models.AnalysisRow, error) {
	return nil, errors.New("database gone")
}
