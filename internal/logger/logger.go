// Package logger provides structured logging setup.
package logger

import (
	"os"

	"github.com/email-classifier/pkg/sanitizer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// previewLength is the number of characters of email content kept in logs.
const previewLength = 120

var previewSanitizer = sanitizer.New(previewLength)

// New creates a new structured logger. Development mode writes colored
// console output to stderr so it never mixes with CLI results on stdout.
func New(development bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.OutputPaths = []string{"stderr"}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		var zapLevel zapcore.Level
		if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
			config.Level = zap.NewAtomicLevelAt(zapLevel)
		}
	}

	return config.Build()
}

// NewNop creates a no-op logger for testing.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// Preview returns a field holding a redacted, truncated preview of email
// content. Raw content must never be logged.
func Preview(key, content string) zap.Field {
	return zap.String(key, previewSanitizer.Preview(content))
}
