package image

import (
	"errors"
	"strings"
)

var (
	// ErrEmpty marks payloads below the minimum size.
	ErrEmpty = errors.New("image file appears empty")
	// ErrTooLarge marks payloads above the configured maximum.
	ErrTooLarge = errors.New("image file too large")
	// ErrUnsupported marks formats outside the allow list.
	ErrUnsupported = errors.New("unsupported image type")
)

// ValidationResult captures the outcome of security validation.
type ValidationResult struct {
	IsValid      bool
	Format       string
	Width        int
	Height       int
	FileSize     int64
	Error        error
	SecurityRisk string
}

// Metrics aggregates validation statistics for the health endpoint.
type Metrics struct {
	TotalProcessed    int64 `json:"total_processed"`
	Accepted          int64 `json:"accepted"`
	FailedValidations int64 `json:"failed_validations"`
	SecurityIncidents int64 `json:"security_incidents"`
}

// FormatFromContentType maps "image/jpeg" style MIME types to codec names.
// Bare format names pass through lower-cased.
func FormatFromContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ct = strings.TrimPrefix(ct, "image/")
	switch ct {
	case "jpg", "pjpeg":
		return "jpeg"
	case "x-png":
		return "png"
	}
	return ct
}
