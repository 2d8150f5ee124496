package testutil

import (
	"context"
	"sync"

	"github.com/phisnet/backend/internal/models"
)

// StubClassifier returns a fixed result or error and counts calls.
type StubClassifier struct {
	mu     sync.Mutex
	Result *models.AnalysisResult
	Err    error
	calls  int
}

// NewStubClassifier returns a classifier that always answers with risk.
func NewStubClassifier(risk models.RiskLabel) *StubClassifier {
	return &StubClassifier{Result: &models.AnalysisResult{
		Risk:       risk,
		Confidence: 90,
		Threats:    []string{"Phishing email detected"},
		Details:    "stubbed",
	}}
}

func (s *StubClassifier) Classify(ctx context.Context, rec models.UploadRecord) (*models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result.Clone(), nil
}

// Calls returns how many times Classify ran.
func (s *StubClassifier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// RecordingSink collects terminal records.
type RecordingSink struct {
	mu      sync.Mutex
	records []models.UploadRecord
	Err     error
}

func (r *RecordingSink) OnComplete(ctx context.Context, rec models.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.Err
}

// Records returns a copy of everything collected so far.
func (r *RecordingSink) Records() []models.UploadRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.UploadRecord(nil), r.records...)
}
