package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/email-classifier/internal/classifier"
	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClassifyRequest is the JSON body of POST /api/v1/classify.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse is returned by the classify endpoint.
type ClassifyResponse struct {
	Success     bool                         `json:"success"`
	Result      *domain.ClassificationResult `json:"result,omitempty"`
	Error       string                       `json:"error,omitempty"`
	ErrorKind   domain.ErrorKind             `json:"error_kind,omitempty"`
	ProcessedAt time.Time                    `json:"processed_at"`
}

// FileInfo describes the selected file without its content.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	Environment   endpoint.Environment         `json:"environment"`
	Endpoints     endpoint.Set                 `json:"endpoints"`
	Availability  domain.Availability          `json:"availability"`
	State         string                       `json:"state"`
	CurrentFile   *FileInfo                    `json:"current_file,omitempty"`
	LastResult    *domain.ClassificationResult `json:"last_result,omitempty"`
	Notifications []NotificationEntry          `json:"notifications"`
}

// ConsoleHandler exposes a Controller over HTTP.
type ConsoleHandler struct {
	controller    *classifier.Controller
	notifications *NotificationLog
	logger        *zap.Logger
}

// NewConsoleHandler creates a new ConsoleHandler.
func NewConsoleHandler(controller *classifier.Controller, notifications *NotificationLog, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		controller:    controller,
		notifications: notifications,
		logger:        logger.Named("console_handler"),
	}
}

// Status processes GET /api/v1/status requests.
func (h *ConsoleHandler) Status(c *gin.Context) {
	resp := StatusResponse{
		Environment:   h.controller.Environment(),
		Endpoints:     h.controller.Endpoints(),
		Availability:  h.controller.Availability(),
		State:         h.controller.State().String(),
		LastResult:    h.controller.LastResult(),
		Notifications: []NotificationEntry{},
	}
	if f := h.controller.CurrentFile(); f != nil {
		resp.CurrentFile = fileInfo(f)
	}
	if h.notifications != nil {
		resp.Notifications = h.notifications.Recent()
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck processes POST /api/v1/health-check requests.
func (h *ConsoleHandler) HealthCheck(c *gin.Context) {
	availability := h.controller.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"availability": availability,
		"checked_at":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Classify processes POST /api/v1/classify requests. A multipart request
// classifies its "file" part; a JSON request classifies its text, or the
// selected file when the text is empty.
func (h *ConsoleHandler) Classify(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	var source domain.Source
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := readFormFile(c, h.controller.MaxFileSize())
		if err != nil {
			logger.Warn("invalid multipart request", zap.Error(err))
			h.fail(c, http.StatusBadRequest, err)
			return
		}
		source = domain.FileSource(file)
	} else {
		var req ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("invalid request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, ClassifyResponse{
				Error:       "Invalid request body: " + err.Error(),
				ErrorKind:   domain.KindValidation,
				ProcessedAt: time.Now(),
			})
			return
		}
		source = domain.TextSource(req.Text)
		if strings.TrimSpace(req.Text) == "" && h.controller.CurrentFile() != nil {
			source = domain.FileSource(nil)
		}
	}

	result, err := h.controller.Process(c.Request.Context(), source)
	if err != nil {
		logger.Info("classification failed", zap.Error(err))
		h.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{
		Success:     true,
		Result:      result,
		ProcessedAt: time.Now(),
	})
}

// SelectFile processes POST /api/v1/file requests.
func (h *ConsoleHandler) SelectFile(c *gin.Context) {
	file, err := readFormFile(c, h.controller.MaxFileSize())
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.controller.SelectFile(file); err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": fileInfo(file)})
}

// RemoveFile processes DELETE /api/v1/file requests.
func (h *ConsoleHandler) RemoveFile(c *gin.Context) {
	h.controller.RemoveFile()
	c.Status(http.StatusNoContent)
}

// Clear processes DELETE /api/v1/result requests.
func (h *ConsoleHandler) Clear(c *gin.Context) {
	h.controller.Clear()
	c.Status(http.StatusNoContent)
}

func (h *ConsoleHandler) fail(c *gin.Context, status int, err error) {
	c.JSON(status, ClassifyResponse{
		Error:       domain.UserMessage(err),
		ErrorKind:   domain.KindOf(err),
		ProcessedAt: time.Now(),
	})
}

// HealthHandler handles liveness requests for the console itself.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps a controller error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrControllerClosed):
		return http.StatusServiceUnavailable
	case domain.KindOf(err) == domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// multipartOverhead is the body allowance on top of the file size limit for
// multipart boundaries, part headers and other form fields.
const multipartOverhead = 64 << 10

// readFormFile reads the "file" part of a multipart request. Oversized
// bodies and parts are rejected before their content is read.
func readFormFile(c *gin.Context, maxSize int64) (*domain.File, error) {
	tooLarge := domain.NewValidationError("file", domain.ErrFileTooLarge)

	limit := maxSize + multipartOverhead
	if c.Request.ContentLength > limit {
		return nil, tooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, tooLarge
		}
		return nil, domain.NewValidationError("file", domain.ErrNoFileSelected)
	}
	return openFormFile(header, maxSize)
}

func openFormFile(header *multipart.FileHeader, maxSize int64) (*domain.File, error) {
	if header.Size > maxSize {
		return nil, domain.NewValidationError("file", domain.ErrFileTooLarge)
	}

	f, err := header.Open()
	if err != nil {
		return nil, domain.NewValidationError("file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, domain.NewValidationError("file", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.NewValidationError("file", domain.ErrFileTooLarge)
	}

	file := classifier.NewFile(header.Filename, header.Header.Get("Content-Type"), data)
	file.Size = header.Size
	return file, nil
}

func fileInfo(f *domain.File) *FileInfo {
	size := f.Size
	if size <= 0 {
		size = int64(len(f.Data))
	}
	return &FileInfo{
		Name: f.Name,
		Type: f.DeclaredType,
		Size: domain.FormatFileSize(size),
	}
}
