// Package sanitizer normalizes email text and masks personal data before it
// reaches logs.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sanitizer normalizes email content and redacts sensitive values.
type Sanitizer struct {
	patterns []*regexp.Regexp
	maxLen   int
}

// Pattern definitions for personal data and credentials commonly pasted
// into support emails.
var defaultPatterns = []*regexp.Regexp{
	// Authentication tokens
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.]+`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|senha|password)\s*[:=]\s*['"]?([^\s'"]{4,})['"]?`),

	// URLs
	regexp.MustCompile(`https?://\S+`),

	// Email addresses
	regexp.MustCompile(`\b[\w.%+-]+@[\w.-]+\.[a-zA-Z]{2,}\b`),

	// Brazilian CPF numbers
	regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`),

	// Phone numbers, e.g. (11) 98765-4321
	regexp.MustCompile(`\(?\b\d{2}\)?\s?\d{4,5}-?\d{4}\b`),

	// Card-like digit runs
	regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`),
}

var whitespace = regexp.MustCompile(`\s+`)

// New creates a new Sanitizer with default patterns. maxLen bounds the
// length of previews in characters.
func New(maxLen int) *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns,
		maxLen:   maxLen,
	}
}

// NewWithPatterns creates a Sanitizer with custom patterns.
func NewWithPatterns(maxLen int, patterns []*regexp.Regexp) *Sanitizer {
	return &Sanitizer{
		patterns: patterns,
		maxLen:   maxLen,
	}
}

// Normalize converts CRLF and lone CR line endings to LF and trims
// surrounding whitespace.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// Length returns the length of text in characters.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// Mask replaces sensitive values in text with masked versions.
func (s *Sanitizer) Mask(text string) string {
	result := text

	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllStringFunc(result, maskValue)
	}

	return result
}

// Preview returns a single-line, masked, truncated version of text
// suitable for logging.
func (s *Sanitizer) Preview(text string) string {
	text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	return truncate(s.Mask(text), s.maxLen)
}

// maskValue creates a masked version of a matched value.
func maskValue(match string) string {
	if idx := strings.IndexAny(match, ":="); idx != -1 && !strings.Contains(match, "://") {
		return match[:idx+1] + "[REDACTED]"
	}
	return "[REDACTED]"
}

// IsEmpty checks if the text is empty or whitespace only.
func (s *Sanitizer) IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}

// IsTooLong checks if the text exceeds the maximum length in characters.
func (s *Sanitizer) IsTooLong(text string) bool {
	return Length(text) > s.maxLen
}

// MaskStats reports what Mask did.
type MaskStats struct {
	OriginalLength int
	MaskedLength   int
	Redactions     int
}

// MaskWithStats masks text and returns statistics.
func (s *Sanitizer) MaskWithStats(text string) (string, MaskStats) {
	stats := MaskStats{OriginalLength: Length(text)}

	masked := text
	for _, pattern := range s.patterns {
		stats.Redactions += len(pattern.FindAllStringIndex(masked, -1))
		masked = pattern.ReplaceAllStringFunc(masked, maskValue)
	}
	stats.MaskedLength = Length(masked)

	return masked, stats
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
