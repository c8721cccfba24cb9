package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/email-classifier/internal/classifier"
	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService lets each test script the classification service.
type stubService struct {
	classify func(ctx context.Context, text string) (*domain.ClassificationResult, error)
	healthy  bool
}

func (s *stubService) Classify(ctx context.Context, url, text string) (*domain.ClassificationResult, error) {
	return s.classify(ctx, text)
}

func (s *stubService) Upload(ctx context.Context, url string, file *domain.File) (string, error) {
	return string(file.Data), nil
}

func (s *stubService) Health(ctx context.Context, url string) error {
	if s.healthy {
		return nil
	}
	return domain.ServiceError("health_check", http.StatusServiceUnavailable, "")
}

func okService() *stubService {
	return &stubService{
		healthy: true,
		classify: func(ctx context.Context, text string) (*domain.ClassificationResult, error) {
			return &domain.ClassificationResult{
				Category:          domain.CategoryProductive,
				Confidence:        0.87,
				SuggestedResponse: "Obrigado",
				ProcessingTime:    "1.2",
				ModelUsed:         "test",
			}, nil
		},
	}
}

func newTestRouter(t *testing.T, svc classifier.Service) (*gin.Engine, *classifier.Controller) {
	t.Helper()
	cfg := classifier.ControllerConfig{
		Environment:          endpoint.EnvLocal,
		Endpoints:            endpoint.NewResolver(nil).Resolve(endpoint.EnvLocal),
		Timeout:              time.Second,
		HealthTimeout:        time.Second,
		MaxTextLength:        100,
		MaxFileSize:          1024,
		NotificationsEnabled: true,
	}
	notifications := NewNotificationLog(10, zap.NewNop())
	ctrl := classifier.NewController(cfg, svc, notifications, zap.NewNop())
	t.Cleanup(ctrl.Close)
	return NewRouter(ctrl, notifications, zap.NewNop()), ctrl
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doUpload(router *gin.Engine, path, name string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", name)
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestConsole_Classify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   domain.ErrorKind
	}{
		{"valid text", `{"text":"  texto de teste  "}`, http.StatusOK, ""},
		{"empty text", `{"text":"   "}`, http.StatusBadRequest, domain.KindValidation},
		{"too long", `{"text":"` + strings.Repeat("a", 101) + `"}`, http.StatusBadRequest, domain.KindValidation},
		{"malformed", `{"text":`, http.StatusBadRequest, domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, okService())

			w := doJSON(router, http.MethodPost, "/api/v1/classify", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp ClassifyResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", resp.ErrorKind, tt.wantKind)
			}
			if tt.wantStatus == http.StatusOK {
				if !resp.Success || resp.Result == nil || resp.Result.Category != domain.CategoryProductive {
					t.Errorf("unexpected response: %+v", resp)
				}
			} else if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestConsole_Classify_ServiceError(t *testing.T) {
	svc := &stubService{
		classify: func(ctx context.Context, text string) (*domain.ClassificationResult, error) {
			return nil, domain.ServiceError("classify", http.StatusInternalServerError, "Erro interno do servidor")
		},
	}
	router, ctrl := newTestRouter(t, svc)

	w := doJSON(router, http.MethodPost, "/api/v1/classify", `{"text":"texto"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}

	var resp ClassifyResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Erro interno do servidor" || resp.ErrorKind != domain.KindService {
		t.Errorf("unexpected response: %+v", resp)
	}
	if ctrl.State() != domain.StateIdle {
		t.Errorf("State() = %s, want idle", ctrl.State())
	}
}

func TestConsole_Classify_Conflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := okService()
	inner := svc.classify
	svc.classify = func(ctx context.Context, text string) (*domain.ClassificationResult, error) {
		close(started)
		<-release
		return inner(ctx, text)
	}
	router, ctrl := newTestRouter(t, svc)

	done := make(chan int, 1)
	go func() {
		done <- doJSON(router, http.MethodPost, "/api/v1/classify", `{"text":"primeiro"}`).Code
	}()
	<-started

	w := doJSON(router, http.MethodPost, "/api/v1/classify", `{"text":"segundo"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", code)
	}
	if ctrl.LastResult() == nil {
		t.Error("expected the first result to be recorded")
	}
}

func TestConsole_FileLifecycle(t *testing.T) {
	router, ctrl := newTestRouter(t, okService())

	w := doUpload(router, "/api/v1/file", "planilha.xlsx", []byte("data"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported file status = %d, want 400", w.Code)
	}

	w = doUpload(router, "/api/v1/file", "grande.txt", bytes.Repeat([]byte("a"), 1025))
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized file status = %d, want 400", w.Code)
	}

	w = doUpload(router, "/api/v1/file", "email.txt", []byte("Preciso do status do chamado 123.\r\n"))
	if w.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", w.Code, w.Body.String())
	}
	if ctrl.CurrentFile() == nil || ctrl.CurrentFile().Name != "email.txt" {
		t.Fatal("expected email.txt to be selected")
	}

	// Empty text falls back to the selected file.
	w = doJSON(router, http.MethodPost, "/api/v1/classify", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("classify status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/api/v1/status", "")
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.CurrentFile == nil || status.LastResult == nil {
		t.Errorf("status should report file and result: %+v", status)
	}
	if status.State != "idle" || status.Environment != endpoint.EnvLocal {
		t.Errorf("unexpected status: %+v", status)
	}
	if len(status.Notifications) == 0 {
		t.Error("expected notifications in status")
	}

	w = doJSON(router, http.MethodDelete, "/api/v1/file", "")
	if w.Code != http.StatusNoContent || ctrl.CurrentFile() != nil {
		t.Errorf("remove file status = %d", w.Code)
	}

	w = doJSON(router, http.MethodDelete, "/api/v1/result", "")
	if w.Code != http.StatusNoContent || ctrl.LastResult() != nil {
		t.Errorf("clear status = %d", w.Code)
	}
}

func TestConsole_ClassifyMultipart(t *testing.T) {
	router, _ := newTestRouter(t, okService())

	w := doUpload(router, "/api/v1/classify", "email.txt", []byte("Olá, bom dia!"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	w = doUpload(router, "/api/v1/classify", "vazio.txt", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty file status = %d, want 400", w.Code)
	}
}

func TestConsole_HealthCheck(t *testing.T) {
	svc := okService()
	svc.healthy = false
	router, ctrl := newTestRouter(t, svc)

	w := doJSON(router, http.MethodPost, "/api/v1/health-check", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ctrl.Availability() != domain.AvailabilityUnavailable {
		t.Errorf("Availability() = %s, want unavailable", ctrl.Availability())
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	router, _ := newTestRouter(t, okService())

	w := doJSON(router, http.MethodGet, "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", w.Header().Get("X-Request-ID"))
	}
}

func TestNotificationLog_Bounded(t *testing.T) {
	log := NewNotificationLog(2, zap.NewNop())
	for _, msg := range []string{"a", "b", "c"} {
		log.Notify(domain.Notification{Level: domain.NotifyInfo, Message: msg})
	}

	got := log.Recent()
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Errorf("Recent() = %+v", got)
	}
}

func TestConsole_OversizedFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		size int
	}{
		{"select one byte over", "/api/v1/file", 1025},
		{"classify one byte over", "/api/v1/classify", 1025},
		{"body over the request limit", "/api/v1/file", 1024 + multipartOverhead + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ctrl := newTestRouter(t, okService())

			w := doUpload(router, tt.path, "grande.txt", bytes.Repeat([]byte("a"), tt.size))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}

			var resp ClassifyResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.ErrorKind != domain.KindValidation {
				t.Errorf("ErrorKind = %q, want validation", resp.ErrorKind)
			}
			if !strings.Contains(resp.Error, domain.ErrFileTooLarge.Error()) {
				t.Errorf("Error = %q, want it to mention the size limit", resp.Error)
			}
			if ctrl.CurrentFile() != nil {
				t.Error("an oversized file must not be selected")
			}
		})
	}
}
