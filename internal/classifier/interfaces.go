// Package classifier provides the classification service client and the
// controller that mediates between user input and the service.
package classifier

import (
	"context"

	"github.com/email-classifier/internal/domain"
)

// Service defines the interface for the remote classification service.
// This interface allows for easy mocking and swapping of transports.
// URLs may be absolute or relative; implementations resolve relative URLs.
type Service interface {
	// Classify sends email text to the classify endpoint and maps the
	// response onto a result with defaults applied.
	Classify(ctx context.Context, url, text string) (*domain.ClassificationResult, error)

	// Upload sends a file to the upload endpoint and returns the extracted text.
	Upload(ctx context.Context, url string, file *domain.File) (string, error)

	// Health probes the health endpoint. Any 2xx response is healthy.
	Health(ctx context.Context, url string) error
}

// Notifier receives user-facing notifications from the controller.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n domain.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}
