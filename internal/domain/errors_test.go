package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassificationError_UserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ClassificationError
		want string
	}{
		{
			name: "service message wins",
			err:  ServiceError("classify", 400, "Texto do email é obrigatório."),
			want: "Texto do email é obrigatório.",
		},
		{
			name: "status fallback",
			err:  ServiceError("classify", 503, ""),
			want: "HTTP error 503: Service Unavailable",
		},
		{
			name: "unknown status",
			err:  ServiceError("classify", 599, ""),
			want: "HTTP error 599",
		},
		{
			name: "wrapped error",
			err:  WrapError("classify", KindNetwork, ErrServiceTimeout),
			want: "classification service timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.UserMessage(); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	ve := NewValidationError("text", ErrEmptyContent)

	if got := KindOf(ve); got != KindValidation {
		t.Errorf("KindOf(validation) = %s", got)
	}
	if got := KindOf(WrapError("parse", KindParse, ErrInvalidResponse)); got != KindParse {
		t.Errorf("KindOf(parse) = %s", got)
	}
	if got := KindOf(fmt.Errorf("wrapped: %w", ServiceError("classify", 500, ""))); got != KindService {
		t.Errorf("KindOf(wrapped service) = %s", got)
	}
	if got := KindOf(errors.New("boom")); got != KindNetwork {
		t.Errorf("KindOf(unknown) = %s", got)
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	err := WrapError("submit", KindValidation, NewValidationError("file", ErrFileTooLarge))

	if !errors.Is(err, ErrFileTooLarge) {
		t.Error("expected errors.Is to find ErrFileTooLarge")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "file" {
		t.Errorf("expected ValidationError for field file, got %v", ve)
	}
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"PRODUTIVO":   CategoryProductive,
		" produtivo ": CategoryProductive,
		"IMPRODUTIVO": CategoryUnproductive,
		"":            CategoryUnproductive,
		"other":       CategoryUnproductive,
	}

	for in, want := range tests {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestClassificationResult_ConfidencePercent(t *testing.T) {
	r := &ClassificationResult{Confidence: 0.87}
	if got := r.ConfidencePercent(); got != 87 {
		t.Errorf("ConfidencePercent() = %d, want 87", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		512:             "512 B",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5 MB",
		1234567:         "1.18 MB",
	}

	for in, want := range tests {
		if got := FormatFileSize(in); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", in, got, want)
		}
	}
}
