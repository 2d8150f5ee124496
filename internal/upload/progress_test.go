package upload

import (
	"math/rand"
	"testing"

	"github.com/phisnet/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNextProgress_StepRangeAndClamp(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		cur := r.Intn(100)
		next := NextProgress(cur, r)
		assert.LessOrEqual(t, next, 100)
		if cur+minStep >= 100 {
			assert.Equal(t, 100, next)
			continue
		}
		assert.GreaterOrEqual(t, next, cur+minStep)
		assert.LessOrEqual(t, next, cur+maxStep)
	}
}

func TestNextProgress_Terminal(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	assert.Equal(t, 100, NextProgress(100, r))
	assert.Equal(t, 100, NextProgress(130, r))
	assert.Equal(t, 100, NextProgress(99, r))

	neg := NextProgress(-10, r)
	assert.GreaterOrEqual(t, neg, minStep)
	assert.LessOrEqual(t, neg, maxStep)
}

func TestNextProgress_SeededSequenceIsReproducible(t *testing.T) {
	run := func() []int {
		r := rand.New(rand.NewSource(99))
		var seq []int
		p := 0
		for p < 100 {
			p = NextProgress(p, r)
			seq = append(seq, p)
		}
		return seq
	}
	a, b := run(), run()
	assert.Equal(t, a, b)
	assert.Equal(t, 100, a[len(a)-1])
	for i := 1; i < len(a); i++ {
		assert.Greater(t, a[i], a[i-1])
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, models.UploadStatusUploading, StatusFor(0))
	assert.Equal(t, models.UploadStatusUploading, StatusFor(50))
	assert.Equal(t, models.UploadStatusAnalyzing, StatusFor(51))
	assert.Equal(t, models.UploadStatusAnalyzing, StatusFor(99))
}
