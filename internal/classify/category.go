// Package classify decides which files the drop target accepts, which
// category they fall into, and what the analysis outcome is.
package classify

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phisnet/backend/internal/models"
)

// MaxFileSize is the default drop-target ceiling (100 MiB).
const MaxFileSize int64 = 100 * 1024 * 1024

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyName       = errors.New("file name is required")
)

// extensionCategories lists the extensions the drop target accepts.
var extensionCategories = map[string]models.Category{
	".txt":  models.CategoryText,
	".eml":  models.CategoryText,
	".csv":  models.CategoryText,
	".mp3":  models.CategoryAudio,
	".wav":  models.CategoryAudio,
	".m4a":  models.CategoryAudio,
	".mp4":  models.CategoryVideo,
	".mov":  models.CategoryVideo,
	".avi":  models.CategoryVideo,
	".png":  models.CategoryImage,
	".jpg":  models.CategoryImage,
	".jpeg": models.CategoryImage,
}

// DetectCategory derives the category from the MIME family, falling back to
// the file extension. It is a pure function of its inputs.
func DetectCategory(name, contentType string) models.Category {
	if c := categoryFromMIME(contentType); c != models.CategoryUnknown {
		return c
	}
	return categoryFromExtension(name)
}

func categoryFromMIME(contentType string) models.Category {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	// Drop parameters such as "; charset=utf-8".
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case strings.HasPrefix(ct, "text/"):
		return models.CategoryText
	case strings.HasPrefix(ct, "audio/"):
		return models.CategoryAudio
	case strings.HasPrefix(ct, "video/"):
		return models.CategoryVideo
	case strings.HasPrefix(ct, "image/"):
		return models.CategoryImage
	}
	return models.CategoryUnknown
}

func categoryFromExtension(name string) models.Category {
	if c, ok := extensionCategories[strings.ToLower(filepath.Ext(name))]; ok {
		return c
	}
	return models.CategoryUnknown
}

// AcceptedExtensions returns the accepted extensions grouped by category.
func AcceptedExtensions() map[models.Category][]string {
	out := make(map[models.Category][]string)
	for _, ext := range []string{".txt", ".eml", ".csv", ".mp3", ".wav", ".m4a", ".mp4", ".mov", ".avi", ".png", ".jpg", ".jpeg"} {
		c := extensionCategories[ext]
		out[c] = append(out[c], ext)
	}
	return out
}

// Validate applies the drop-target constraints. A non-positive maxSize means
// MaxFileSize.
func Validate(name, contentType string, size int64, maxSize int64) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, maxSize)
	}
	if DetectCategory(name, contentType) == models.CategoryUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}
	return nil
}

// RejectionCode maps a validation error to a stable code for API clients.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrUnsupportedType):
		return "UNSUPPORTED_TYPE"
	case errors.Is(err, ErrEmptyName):
		return "INVALID_NAME"
	default:
		return "REJECTED"
	}
}
