package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"CLASSIFIER_ENV", "CLASSIFIER_HOST", "CLASSIFIER_LOCAL_BASE_URL",
		"CLASSIFIER_HOSTED_BASE_URL", "CLASSIFIER_TIMEOUT", "MAX_TEXT_LENGTH",
		"MAX_FILE_SIZE", "CLASSIFIER_ENDPOINTS_FILE", "CLASSIFIER_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Service.Timeout)
	}
	if cfg.Submission.MaxTextLength != 10000 {
		t.Errorf("MaxTextLength = %d, want 10000", cfg.Submission.MaxTextLength)
	}
	if cfg.Submission.MaxFileSize != 5*1024*1024 {
		t.Errorf("MaxFileSize = %d, want 5MB", cfg.Submission.MaxFileSize)
	}
	if cfg.Environment() != endpoint.EnvLocal {
		t.Errorf("Environment() = %s, want local", cfg.Environment())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CLASSIFIER_HOST", "email-ui.vercel.app")
	t.Setenv("CLASSIFIER_HOSTED_BASE_URL", "https://api.example.com")
	t.Setenv("CLASSIFIER_TIMEOUT", "15")
	t.Setenv("REQUIRE_AVAILABILITY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment() != endpoint.EnvHosted {
		t.Errorf("Environment() = %s, want hosted", cfg.Environment())
	}
	if cfg.Service.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Service.Timeout)
	}
	if !cfg.Submission.RequireAvailability {
		t.Error("RequireAvailability = false, want true")
	}

	t.Setenv("CLASSIFIER_ENV", "local")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Environment() != endpoint.EnvLocal {
		t.Errorf("explicit CLASSIFIER_ENV ignored: %s", cfg.Environment())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service: ServiceConfig{
				Host:          "localhost",
				LocalBaseURL:  "http://localhost:8001",
				Timeout:       30 * time.Second,
				HealthTimeout: 5 * time.Second,
			},
			Submission: SubmissionConfig{
				MaxTextLength: 10000,
				MaxFileSize:   5 << 20,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.Service.Environment = "staging" }},
		{"relative local base", func(c *Config) { c.Service.LocalBaseURL = "/api" }},
		{"bad hosted base", func(c *Config) { c.Service.HostedBaseURL = "not a url" }},
		{"short timeout", func(c *Config) { c.Service.Timeout = 100 * time.Millisecond }},
		{"zero text length", func(c *Config) { c.Submission.MaxTextLength = 0 }},
		{"tiny file size", func(c *Config) { c.Submission.MaxFileSize = 10 }},
		{"hosted without base or origin", func(c *Config) { c.Service.Environment = "hosted" }},
		{"detected hosted without base or origin", func(c *Config) { c.Service.Host = "email-ui.vercel.app" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	hosted := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hosted base", func(c *Config) { c.Service.HostedBaseURL = "https://api.example.com" }},
		{"origin", func(c *Config) { c.Service.Origin = "https://mail.example.com" }},
		{"endpoints file", func(c *Config) { c.Service.EndpointsFile = "endpoints.yaml" }},
	}
	for _, tt := range hosted {
		t.Run("hosted with "+tt.name, func(t *testing.T) {
			cfg := valid()
			cfg.Service.Environment = "hosted"
			tt.mutate(cfg)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestProfiles_EndpointsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(path, []byte("hosted:\n  paths:\n    classify: /api/classify\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Service: ServiceConfig{
		LocalBaseURL:  "http://localhost:8001",
		EndpointsFile: path,
	}}

	profiles, err := cfg.Profiles()
	if err != nil {
		t.Fatalf("Profiles() error = %v", err)
	}

	set := endpoint.NewResolver(profiles).Resolve(endpoint.EnvHosted)
	if got := set.URL(endpoint.OpClassify); got != "/api/classify" {
		t.Errorf("classify = %q, want /api/classify", got)
	}
}
