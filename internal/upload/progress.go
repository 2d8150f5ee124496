package upload

import (
	"math/rand"

	"github.com/phisnet/backend/internal/models"
)

const (
	minStep            = 5
	maxStep            = 20
	analyzingThreshold = 50
)

// NextProgress advances progress by a random step in [5, 20], clamped to 100.
// With a seeded source the sequence is reproducible.
func NextProgress(current int, r *rand.Rand) int {
	if current >= 100 {
		return 100
	}
	if current < 0 {
		current = 0
	}
	next := current + minStep + r.Intn(maxStep-minStep+1)
	if next > 100 {
		next = 100
	}
	return next
}

// StatusFor returns the in-flight status for a progress value below 100.
func StatusFor(progress int) models.UploadStatus {
	if progress > analyzingThreshold {
		return models.UploadStatusAnalyzing
	}
	return models.UploadStatusUploading
}
