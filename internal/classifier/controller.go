package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
	"github.com/email-classifier/internal/logger"
	"github.com/email-classifier/pkg/sanitizer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ControllerConfig parameterizes a Controller.
type ControllerConfig struct {
	// Environment is the detected deployment environment.
	Environment endpoint.Environment

	// Endpoints is the resolved endpoint set for Environment.
	Endpoints endpoint.Set

	// Timeout bounds a classify request and a PDF upload.
	Timeout time.Duration

	// HealthTimeout bounds a health probe.
	HealthTimeout time.Duration

	// MaxTextLength is the maximum content length in characters.
	MaxTextLength int

	// MaxFileSize is the maximum file size in bytes.
	MaxFileSize int64

	// RequireAvailability rejects submissions unless the last health
	// probe reported the service available.
	RequireAvailability bool

	// NotificationsEnabled enables info and success notifications.
	// Warnings and errors are always delivered.
	NotificationsEnabled bool
}

// Controller mediates between user-supplied content and the classification
// service. It allows at most one submission in flight.
type Controller struct {
	cfg      ControllerConfig
	service  Service
	notifier Notifier
	logger   *zap.Logger

	state atomic.Int32

	mu           sync.RWMutex
	currentFile  *domain.File
	lastResult   *domain.ClassificationResult
	availability domain.Availability

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new Controller. A nil notifier discards
// notifications.
func NewController(cfg ControllerConfig, service Service, notifier Notifier, logger *zap.Logger) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		cfg:          cfg,
		service:      service,
		notifier:     notifier,
		logger:       logger.Named("controller"),
		availability: domain.AvailabilityUnknown,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Submit classifies content. It returns domain.ErrSubmissionInProgress
// immediately, without a network call, if another submission is in flight.
// Every other failure is a *domain.ClassificationError, and the controller
// is Idle again when Submit returns.
func (c *Controller) Submit(ctx context.Context, content *domain.SubmissionContent) (result *domain.ClassificationResult, err error) {
	if c.ctx.Err() != nil {
		return nil, domain.WrapError("submit", domain.KindNetwork, domain.ErrControllerClosed)
	}

	if !c.state.CompareAndSwap(int32(domain.StateIdle), int32(domain.StateSubmitting)) {
		c.logger.Debug("submission rejected, another one is in progress")
		return nil, domain.ErrSubmissionInProgress
	}
	defer c.state.Store(int32(domain.StateIdle))

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during submission", zap.Any("panic", r))
			result = nil
			err = domain.WrapError("submit", domain.KindNetwork, fmt.Errorf("unexpected failure: %v", r))
			c.notify(domain.NotifyError, "Error processing email: "+domain.UserMessage(err))
		}
	}()

	if err := c.validateContent(content); err != nil {
		c.notify(domain.NotifyWarning, domain.UserMessage(err))
		return nil, domain.WrapError("submit", domain.KindValidation, err)
	}

	if c.cfg.RequireAvailability && c.Availability() != domain.AvailabilityAvailable {
		err := &domain.ClassificationError{
			Kind:    domain.KindNetwork,
			Op:      "submit",
			Message: "classification service unavailable, check the connection",
			Err:     domain.ErrServiceUnavailable,
		}
		c.notify(domain.NotifyError, err.UserMessage())
		return nil, err
	}

	id := uuid.NewString()
	log := c.logger.With(zap.String("submission_id", id))
	startTime := time.Now()
	log.Info("submitting email",
		zap.String("source", string(content.Source)),
		zap.Int("length", sanitizer.Length(content.Text)),
		zap.Bool("degraded", content.Degraded),
		logger.Preview("preview", content.Text),
	)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	result, err = c.service.Classify(reqCtx, c.cfg.Endpoints.URL(endpoint.OpClassify), content.Text)
	if c.ctx.Err() != nil {
		log.Debug("controller closed during submission, discarding outcome")
		return nil, domain.WrapError("submit", domain.KindNetwork, domain.ErrControllerClosed)
	}
	if err != nil {
		err = asClassificationError(err)
		log.Warn("submission failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)
		c.notify(domain.NotifyError, "Error processing email: "+domain.UserMessage(err))
		return nil, err
	}
	if result == nil {
		err = domain.WrapError("submit", domain.KindParse, domain.ErrInvalidResponse)
		c.notify(domain.NotifyError, "Error processing email: "+domain.UserMessage(err))
		return nil, err
	}

	result.ID = id
	result.Degraded = content.Degraded
	if result.ReceivedAt.IsZero() {
		result.ReceivedAt = time.Now()
	}

	c.mu.Lock()
	c.lastResult = result
	c.mu.Unlock()

	log.Info("submission completed",
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("duration", time.Since(startTime)),
	)
	c.notify(domain.NotifySuccess, "Email analyzed successfully")

	return result, nil
}

// ExtractContent validates source and turns it into submission content.
// A file source without a file uses the currently selected file. PDF text
// is extracted by the upload service; when that fails the raw bytes are
// used and the content is marked degraded.
func (c *Controller) ExtractContent(ctx context.Context, source domain.Source) (*domain.SubmissionContent, error) {
	switch source.Kind {
	case domain.SourceText:
		text := strings.TrimSpace(source.Text)
		if err := ValidateText(text, c.cfg.MaxTextLength); err != nil {
			return nil, err
		}
		return &domain.SubmissionContent{Text: text, Source: domain.SourceText}, nil

	case domain.SourceFile:
		file := source.File
		if file == nil {
			file = c.CurrentFile()
		}
		return c.extractFile(ctx, file)

	default:
		return nil, domain.NewValidationError("source", fmt.Errorf("unknown source kind %q", source.Kind))
	}
}

func (c *Controller) extractFile(ctx context.Context, file *domain.File) (*domain.SubmissionContent, error) {
	ft, err := ValidateFile(file, c.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	content := &domain.SubmissionContent{Source: domain.SourceFile, FileName: file.Name}

	switch ft {
	case domain.FileTypePDF:
		c.notify(domain.NotifyInfo, "Processing file...")
		text, err := c.uploadAndExtract(ctx, file)
		if err != nil {
			c.logger.Warn("PDF extraction failed, falling back to raw content",
				zap.String("file", file.Name),
				zap.Error(err),
			)
			c.notify(domain.NotifyWarning, "Could not extract text from the PDF; using its raw content")
			text = degradedText(file.Data)
			content.Degraded = true
		}
		content.Text = text

	default:
		text, err := decodeText(file.Data)
		if err != nil {
			return nil, err
		}
		content.Text = text
	}

	if err := ValidateText(content.Text, c.cfg.MaxTextLength); err != nil {
		return nil, err
	}

	return content, nil
}

func (c *Controller) uploadAndExtract(ctx context.Context, file *domain.File) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	return c.service.Upload(ctx, c.cfg.Endpoints.URL(endpoint.OpUpload), file)
}

// Process extracts content from source and submits it.
func (c *Controller) Process(ctx context.Context, source domain.Source) (*domain.ClassificationResult, error) {
	if c.State() == domain.StateSubmitting {
		return nil, domain.ErrSubmissionInProgress
	}

	content, err := c.ExtractContent(ctx, source)
	if err != nil {
		c.notify(domain.NotifyWarning, domain.UserMessage(err))
		return nil, domain.WrapError("extract", domain.KindValidation, err)
	}

	return c.Submit(ctx, content)
}

// CheckHealth probes the health endpoint once and records the outcome.
// Failures only affect availability and are never returned.
func (c *Controller) CheckHealth(ctx context.Context) domain.Availability {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	availability := domain.AvailabilityAvailable
	if err := c.service.Health(ctx, c.cfg.Endpoints.URL(endpoint.OpHealth)); err != nil {
		availability = domain.AvailabilityUnavailable
		c.logger.Warn("classification service unavailable", zap.Error(err))
	} else {
		c.logger.Debug("classification service available")
	}

	c.mu.Lock()
	c.availability = availability
	c.mu.Unlock()

	return availability
}

// SelectFile validates f and makes it the current file.
func (c *Controller) SelectFile(f *domain.File) error {
	if _, err := ValidateFile(f, c.cfg.MaxFileSize); err != nil {
		c.notify(domain.NotifyError, domain.UserMessage(err))
		return err
	}

	c.mu.Lock()
	c.currentFile = f
	c.mu.Unlock()

	c.notify(domain.NotifyInfo, fmt.Sprintf("File selected: %s (%s)", f.Name, domain.FormatFileSize(fileSize(f))))
	return nil
}

// RemoveFile clears the current file.
func (c *Controller) RemoveFile() {
	c.mu.Lock()
	removed := c.currentFile != nil
	c.currentFile = nil
	c.mu.Unlock()

	if removed {
		c.notify(domain.NotifyInfo, "File removed")
	}
}

// Clear removes the current file and the last result.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.currentFile = nil
	c.lastResult = nil
	c.mu.Unlock()

	c.notify(domain.NotifyInfo, "Form cleared")
}

// CurrentFile returns the selected file, or nil.
func (c *Controller) CurrentFile() *domain.File {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentFile
}

// LastResult returns the most recent successful result, or nil.
func (c *Controller) LastResult() *domain.ClassificationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastResult
}

// Availability returns the outcome of the last health probe.
func (c *Controller) Availability() domain.Availability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.availability
}

// State returns the current request state.
func (c *Controller) State() domain.RequestState {
	return domain.RequestState(c.state.Load())
}

// MaxFileSize returns the file size limit in bytes. Callers reading files
// check it before loading content.
func (c *Controller) MaxFileSize() int64 {
	return c.cfg.MaxFileSize
}

// Environment returns the environment the controller was configured for.
func (c *Controller) Environment() endpoint.Environment {
	return c.cfg.Environment
}

// Endpoints returns a copy of the endpoint set.
func (c *Controller) Endpoints() endpoint.Set {
	return c.cfg.Endpoints.Clone()
}

// Close tears the controller down, aborting any in-flight request.
func (c *Controller) Close() {
	c.cancel()
}

func (c *Controller) validateContent(content *domain.SubmissionContent) error {
	if content == nil {
		return domain.NewValidationError("text", domain.ErrEmptyContent)
	}
	return ValidateText(content.Text, c.cfg.MaxTextLength)
}

func (c *Controller) notify(level domain.NotificationLevel, message string) {
	if !c.cfg.NotificationsEnabled && (level == domain.NotifyInfo || level == domain.NotifySuccess) {
		return
	}
	c.notifier.Notify(domain.Notification{Level: level, Message: message})
}

// asClassificationError guarantees a *domain.ClassificationError with a
// non-empty message.
func asClassificationError(err error) error {
	var ce *domain.ClassificationError
	if errors.As(err, &ce) {
		return err
	}
	return &domain.ClassificationError{
		Kind:    domain.KindNetwork,
		Op:      "submit",
		Message: "could not complete the request",
		Err:     err,
	}
}
