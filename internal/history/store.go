// Package history keeps every finished analysis in an in-memory DuckDB
// database for the analytics endpoints. Nothing outlives the process.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/rs/zerolog"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

// Store records terminal analyses. It implements upload.CompletionSink.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex // serializes writers
	closed bool
	log    zerolog.Logger
}

// NewStore opens an in-memory DuckDB database and creates the analyses table.
func NewStore() (*Store, error) {
	log := logger.Component("history")

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE analyses (
			record_id    VARCHAR PRIMARY KEY,
			file_name    VARCHAR NOT NULL,
			category     VARCHAR NOT NULL,
			status       VARCHAR NOT NULL,
			risk         VARCHAR,
			confidence   INTEGER NOT NULL,
			threat_count INTEGER NOT NULL,
			completed_at BIGINT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	log.Debug().Msg("analytics database ready")
	return &Store{db: db, log: log}, nil
}

// OnComplete stores one terminal record. A record id is stored at most once.
func (s *Store) OnComplete(ctx context.Context, rec models.UploadRecord) error {
	row := toRow(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("history store closed")
	}

	var risk interface{}
	if row.Risk != "" {
		risk = string(row.Risk)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (record_id, file_name, category, status, risk, confidence, threat_count, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		row.RecordID, row.FileName, string(row.Category), string(row.Status), risk,
		row.Confidence, row.ThreatCount, row.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis %s: %w", logger.ShortID(rec.ID), err)
	}
	return nil
}

func toRow(rec models.UploadRecord) models.AnalysisRow {
	row := models.AnalysisRow{
		RecordID: rec.ID,
		FileName: rec.FileName,
		Category: rec.Category,
		Status:   rec.Status,
	}
	if rec.Result != nil {
		row.Risk = rec.Result.Risk
		row.Confidence = rec.Result.Confidence
		row.ThreatCount = len(rec.Result.Threats)
	}
	row.CompletedAt = rec.UpdatedAt
	if rec.CompletedAt != nil {
		row.CompletedAt = *rec.CompletedAt
	}
	return row
}

// Summary aggregates everything recorded so far.
func (s *Store) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	summary := &models.AnalyticsSummary{
		ByRisk:     make(map[string]int),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&summary.Total); err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"risk", summary.ByRisk},
		{"category", summary.ByCategory},
		{"status", summary.ByStatus},
	}
	for _, g := range groups {
		if err := s.countBy(ctx, g.column, g.into); err != nil {
			return nil, err
		}
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(confidence), 0) FROM analyses WHERE status = 'completed'",
	).Scan(&summary.AvgConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to average confidence: %w", err)
	}

	return summary, nil
}

// countBy fills into with row counts grouped by column. column is never user input.
func (s *Store) countBy(ctx context.Context, column string, into map[string]int) error {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM analyses WHERE %s IS NOT NULL GROUP BY %s", column, column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}

// Recent returns the latest analyses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AnalysisRow, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, file_name, category, status, COALESCE(risk, ''), confidence, threat_count, completed_at
		FROM analyses
		ORDER BY completed_at DESC, record_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent analyses: %w", err)
	}
	defer rows.Close()

	out := make([]models.AnalysisRow, 0, limit)
	for rows.Next() {
		var (
			r                      models.AnalysisRow
			category, status, risk string
			completedAt            int64
		)
		if err := rows.Scan(&r.RecordID, &r.FileName, &category, &status, &risk, &r.Confidence, &r.ThreatCount, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		r.Category = models.Category(category)
		r.Status = models.UploadStatus(status)
		r.Risk = models.RiskLabel(risk)
		r.CompletedAt = time.UnixMilli(completedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
