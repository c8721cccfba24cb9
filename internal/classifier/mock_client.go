package classifier

import (
	"context"
	"time"

	"github.com/email-classifier/internal/domain"
	"go.uber.org/zap"
)

// MockService implements the Service interface without network calls.
type MockService struct {
	logger *zap.Logger
}

// NewMockService creates a new mock classification service.
func NewMockService(logger *zap.Logger) *MockService {
	return &MockService{
		logger: logger.Named("mock_service"),
	}
}

// Classify returns a canned classification result.
func (s *MockService) Classify(ctx context.Context, url, text string) (*domain.ClassificationResult, error) {
	s.logger.Debug("mock classification", zap.Int("text_length", len(text)))

	return &domain.ClassificationResult{
		Category:          domain.CategoryProductive,
		Confidence:        0.5,
		SuggestedResponse: "This is a mock response. Set MOCK_MODE=false to use the classification service.",
		ProcessingTime:    domain.DefaultProcessingTime,
		ModelUsed:         "mock",
		ReceivedAt:        time.Now(),
	}, nil
}

// Upload never extracts. Mock mode has no PDF extractor, so the controller
// falls back to degraded content and flags it.
func (s *MockService) Upload(ctx context.Context, url string, file *domain.File) (string, error) {
	s.logger.Debug("mock upload cannot extract text", zap.String("file", file.Name))
	return "", &domain.ClassificationError{
		Kind:    domain.KindService,
		Op:      "upload",
		Message: "text extraction is not available in mock mode",
		Err:     domain.ErrServiceUnavailable,
	}
}

// Health always returns success for the mock service.
func (s *MockService) Health(ctx context.Context, url string) error {
	return nil
}
