package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/pkg/sanitizer"
	"go.uber.org/zap"
)

// maxResponseSize bounds how much of a service response is read.
const maxResponseSize = 1 << 20

// HTTPService implements the Service interface over HTTP/JSON.
type HTTPService struct {
	origin     *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPService creates a new classification service client. origin
// resolves relative endpoint URLs and may be empty when all endpoints are
// absolute. Per-request deadlines come from the caller's context.
func NewHTTPService(origin string, logger *zap.Logger) (*HTTPService, error) {
	var base *url.URL
	if origin != "" {
		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("%w: origin: %v", domain.ErrInvalidConfig, err)
		}
		base = u
	}

	return &HTTPService{
		origin:     base,
		httpClient: &http.Client{},
		logger:     logger.Named("service_client"),
	}, nil
}

// Classify sends email text to the classify endpoint.
func (s *HTTPService) Classify(ctx context.Context, endpoint, text string) (*domain.ClassificationResult, error) {
	startTime := time.Now()

	jsonBody, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, domain.WrapError("marshal_request", domain.KindParse, err)
	}

	target, err := s.resolve(endpoint)
	if err != nil {
		return nil, domain.WrapError("classify", domain.KindNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, domain.WrapError("create_request", domain.KindNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("sending classify request",
		zap.String("url", target),
		zap.Int("body_size", len(jsonBody)),
	)

	body, err := s.do(ctx, "classify", req)
	if err != nil {
		return nil, err
	}

	var resp classifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		s.logger.Warn("failed to unmarshal classify response",
			zap.Error(err),
			zap.Int("body_size", len(body)),
		)
		return nil, &domain.ClassificationError{
			Kind:    domain.KindParse,
			Op:      "parse_response",
			Message: "the classification service returned an unreadable response",
			Err:     fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err),
		}
	}

	result := resp.toResult()

	s.logger.Debug("classify request completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("category", string(result.Category)),
	)

	return result, nil
}

// Upload sends a file as multipart form data and returns the extracted text.
func (s *HTTPService) Upload(ctx context.Context, endpoint string, file *domain.File) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	contentType := file.DeclaredType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", domain.WrapError("create_upload", domain.KindNetwork, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", domain.WrapError("create_upload", domain.KindNetwork, err)
	}
	if err := mw.Close(); err != nil {
		return "", domain.WrapError("create_upload", domain.KindNetwork, err)
	}

	target, err := s.resolve(endpoint)
	if err != nil {
		return "", domain.WrapError("upload", domain.KindNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return "", domain.WrapError("create_request", domain.KindNetwork, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	body, err := s.do(ctx, "upload", req)
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domain.WrapError("parse_upload", domain.KindParse,
			fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err))
	}

	text := sanitizer.Normalize(resp.Text)
	if text == "" {
		return "", domain.WrapError("parse_upload", domain.KindParse,
			fmt.Errorf("%w: no text extracted", domain.ErrInvalidResponse))
	}

	return text, nil
}

// Health probes the health endpoint. The body is ignored: any 2xx
// response counts as available, JSON or not.
func (s *HTTPService) Health(ctx context.Context, endpoint string) error {
	target, err := s.resolve(endpoint)
	if err != nil {
		return domain.WrapError("health_check", domain.KindNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.WrapError("health_check", domain.KindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	_, err = s.do(ctx, "health_check", req)
	return err
}

// do executes req and returns the body of a 2xx response.
func (s *HTTPService) do(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.ClassificationError{
				Kind:    domain.KindNetwork,
				Op:      op,
				Message: "the classification service did not respond in time",
				Err:     domain.ErrServiceTimeout,
			}
		}
		if ctx.Err() != nil {
			return nil, domain.WrapError(op, domain.KindNetwork, ctx.Err())
		}
		return nil, &domain.ClassificationError{
			Kind:    domain.KindNetwork,
			Op:      op,
			Message: "could not reach the classification service",
			Err:     fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, domain.WrapError("read_response", domain.KindNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, s.handleHTTPError(op, resp.StatusCode, body)
	}

	return body, nil
}

// handleHTTPError builds a service error from a non-2xx response, using the
// body's detail or error field when present.
func (s *HTTPService) handleHTTPError(op string, statusCode int, body []byte) error {
	var errResp errorResponse
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.message()
	}

	s.logger.Warn("classification service error",
		zap.String("op", op),
		zap.Int("status", statusCode),
		zap.String("message", message),
	)

	return domain.ServiceError(op, statusCode, message)
}

func (s *HTTPService) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if s.origin == nil {
		return "", fmt.Errorf("%w: relative endpoint %q requires an origin", domain.ErrInvalidConfig, endpoint)
	}
	return s.origin.ResolveReference(ref).String(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
