// Package domain contains the core domain models and types.
// These models represent the contract between the controller and the UI
// layers and are independent of any transport concerns.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the label assigned to an email by the classification service.
type Category string

const (
	CategoryProductive   Category = "PRODUTIVO"
	CategoryUnproductive Category = "IMPRODUTIVO"
)

// ParseCategory maps a service label onto one of the two fixed categories.
// Anything that is not PRODUTIVO is treated as IMPRODUTIVO.
func ParseCategory(s string) Category {
	if strings.EqualFold(strings.TrimSpace(s), string(CategoryProductive)) {
		return CategoryProductive
	}
	return CategoryUnproductive
}

// IsValid checks if the category value is one of the allowed values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProductive, CategoryUnproductive:
		return true
	default:
		return false
	}
}

// Defaults substituted for optional fields the service omitted.
const (
	PlaceholderReply      = "—"
	DefaultProcessingTime = "0.0"
	DefaultModel          = "unspecified"
)

// SourceKind identifies where submission content came from.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourceFile SourceKind = "file"
)

// FileType is the accepted type of an uploaded file.
type FileType string

const (
	FileTypeText FileType = "text/plain"
	FileTypePDF  FileType = "application/pdf"
)

// File is an uploaded or locally selected file.
type File struct {
	// Name is the original file name, used for extension checks.
	Name string

	// DeclaredType is the MIME type reported by the caller or sniffed.
	DeclaredType string

	// Size is the file size in bytes.
	Size int64

	// Data is the raw file content.
	Data []byte
}

// FormatFileSize renders a byte count with a binary unit, e.g. "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", size), "0"), ".")
	return s + " " + units[i]
}

// Source is the raw input to content extraction: either typed text or a file.
type Source struct {
	Kind SourceKind
	Text string
	File *File
}

// TextSource builds a Source for typed text.
func TextSource(text string) Source {
	return Source{Kind: SourceText, Text: text}
}

// FileSource builds a Source for an uploaded file.
func FileSource(f *File) Source {
	return Source{Kind: SourceFile, File: f}
}

// SubmissionContent is validated text ready to be classified.
type SubmissionContent struct {
	// Text is the content sent to the classification service.
	Text string

	// Source records whether the text was typed or extracted from a file.
	Source SourceKind

	// FileName is set for file-backed content.
	FileName string

	// Degraded is set when a PDF could not be extracted by the upload
	// service and its bytes were read as text instead.
	Degraded bool
}

// ClassificationResult is the display result of one successful submission.
type ClassificationResult struct {
	// ID identifies the submission that produced this result.
	ID string `json:"id"`

	// Category is PRODUTIVO or IMPRODUTIVO.
	Category Category `json:"category"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	// SuggestedResponse is the reply proposed by the service.
	SuggestedResponse string `json:"suggested_response"`

	// ProcessingTime is the service-reported duration in seconds.
	ProcessingTime string `json:"processing_time"`

	// ModelUsed identifies the service model.
	ModelUsed string `json:"model_used"`

	// TokensProcessed is reported by some service versions.
	TokensProcessed *int `json:"tokens_processed,omitempty"`

	// DetectedTopics is reported by some service versions.
	DetectedTopics []string `json:"detected_topics,omitempty"`

	// Degraded mirrors SubmissionContent.Degraded.
	Degraded bool `json:"degraded,omitempty"`

	// ReceivedAt is when the result arrived.
	ReceivedAt time.Time `json:"received_at"`
}

// ConfidencePercent returns the confidence rounded to a whole percentage.
func (r *ClassificationResult) ConfidencePercent() int {
	return int(r.Confidence*100 + 0.5)
}

// RequestState is the submission state of a controller.
type RequestState int32

const (
	StateIdle RequestState = iota
	StateSubmitting
)

// String returns the state name.
func (s RequestState) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Availability is the best-effort result of a health probe.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// NotificationLevel is the severity of a user-facing notification.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a message the UI layer should display.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
