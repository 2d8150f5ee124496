package classify

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/phisnet/backend/internal/models"
)

// ErrAnalysisFailed is returned when an analysis does not produce a result.
var ErrAnalysisFailed = errors.New("analysis failed")

// Classifier produces the analysis outcome for a record whose progress has
// reached 100. A real inference backend can be swapped in here.
type Classifier interface {
	Classify(ctx context.Context, rec models.UploadRecord) (*models.AnalysisResult, error)
}

// MockClassifier picks one canned outcome uniformly at random.
type MockClassifier struct {
	mu          sync.Mutex
	rng         *rand.Rand
	outcomes    []models.AnalysisResult
	failureRate int // percent, 0-100
}

// NewMockClassifier creates a classifier over the given outcomes. failureRate is
// the percentage of analyses that fail; it is clamped to [0, 100]. A zero seed
// seeds from the clock.
func NewMockClassifier(outcomes []models.AnalysisResult, seed int64, failureRate int) *MockClassifier {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 100 {
		failureRate = 100
	}
	return &MockClassifier{
		rng:         rand.New(rand.NewSource(seed)),
		outcomes:    append([]models.AnalysisResult(nil), outcomes...),
		failureRate: failureRate,
	}
}

// Classify ignores the content entirely.
func (c *MockClassifier) Classify(ctx context.Context, rec models.UploadRecord) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failureRate > 0 && c.rng.Intn(100) < c.failureRate {
		return nil, ErrAnalysisFailed
	}
	if len(c.outcomes) == 0 {
		return nil, ErrAnalysisFailed
	}
	picked := c.outcomes[c.rng.Intn(len(c.outcomes))]
	return picked.Clone(), nil
}
