// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
)

// Config holds all application configuration.
type Config struct {
	// Console server configuration
	Server ServerConfig

	// Classification service configuration
	Service ServiceConfig

	// Submission limits and UI policy
	Submission SubmissionConfig
}

// ServerConfig contains operator console HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// ServiceConfig contains classification service settings.
type ServiceConfig struct {
	// Environment is the explicit environment override (local, hosted).
	// When empty the environment is detected from Host.
	Environment string

	// Host is the hostname the UI is served from, used for detection.
	Host string

	// LocalBaseURL is the loopback base URL used in the local environment.
	LocalBaseURL string

	// HostedBaseURL is the remote base URL used in the hosted environment.
	// When empty, hosted endpoints are relative paths behind an edge proxy.
	HostedBaseURL string

	// Origin resolves relative endpoint URLs.
	Origin string

	// EndpointsFile optionally points at a YAML endpoint profile table.
	EndpointsFile string

	// Timeout bounds a classify request.
	Timeout time.Duration

	// HealthTimeout bounds a health probe.
	HealthTimeout time.Duration

	// MockMode replaces the remote service with canned responses.
	MockMode bool
}

// SubmissionConfig contains content limits and UI policy.
type SubmissionConfig struct {
	// MaxTextLength is the maximum content length in characters.
	MaxTextLength int

	// MaxFileSize is the maximum uploaded file size in bytes.
	MaxFileSize int64

	// RequireAvailability rejects submissions after a failed health probe.
	RequireAvailability bool

	// NotificationsEnabled enables non-error notifications.
	NotificationsEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 45*time.Second),
		},
		Service: ServiceConfig{
			Environment:   os.Getenv("CLASSIFIER_ENV"),
			Host:          getEnvOrDefault("CLASSIFIER_HOST", "localhost"),
			LocalBaseURL:  getEnvOrDefault("CLASSIFIER_LOCAL_BASE_URL", "http://localhost:8001"),
			HostedBaseURL: os.Getenv("CLASSIFIER_HOSTED_BASE_URL"),
			Origin:        os.Getenv("CLASSIFIER_ORIGIN"),
			EndpointsFile: os.Getenv("CLASSIFIER_ENDPOINTS_FILE"),
			Timeout:       getDurationOrDefault("CLASSIFIER_TIMEOUT", 30*time.Second),
			HealthTimeout: getDurationOrDefault("HEALTH_TIMEOUT", 5*time.Second),
			MockMode:      getBoolOrDefault("MOCK_MODE", false),
		},
		Submission: SubmissionConfig{
			MaxTextLength:        getIntOrDefault("MAX_TEXT_LENGTH", 10000),
			MaxFileSize:          int64(getIntOrDefault("MAX_FILE_SIZE", 5*1024*1024)), // 5MB
			RequireAvailability:  getBoolOrDefault("REQUIRE_AVAILABILITY", false),
			NotificationsEnabled: getBoolOrDefault("NOTIFICATIONS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Service.Environment != "" {
		if _, err := endpoint.ParseEnvironment(c.Service.Environment); err != nil {
			return fmt.Errorf("CLASSIFIER_ENV: %w", err)
		}
	}

	if err := validateBaseURL("CLASSIFIER_LOCAL_BASE_URL", c.Service.LocalBaseURL); err != nil {
		return err
	}

	if c.Service.HostedBaseURL != "" {
		if err := validateBaseURL("CLASSIFIER_HOSTED_BASE_URL", c.Service.HostedBaseURL); err != nil {
			return err
		}
	}

	if c.Service.Origin != "" {
		if err := validateBaseURL("CLASSIFIER_ORIGIN", c.Service.Origin); err != nil {
			return err
		}
	}

	// Hosted endpoints are relative paths; something must make them absolute.
	if c.Environment() == endpoint.EnvHosted && c.Service.HostedBaseURL == "" &&
		c.Service.Origin == "" && c.Service.EndpointsFile == "" {
		return fmt.Errorf("%w: hosted environment needs CLASSIFIER_HOSTED_BASE_URL or CLASSIFIER_ORIGIN", domain.ErrInvalidConfig)
	}

	if c.Service.Timeout < time.Second {
		return fmt.Errorf("%w: CLASSIFIER_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.Service.HealthTimeout <= 0 {
		return fmt.Errorf("%w: HEALTH_TIMEOUT must be positive", domain.ErrInvalidConfig)
	}

	if c.Submission.MaxTextLength < 1 {
		return fmt.Errorf("%w: MAX_TEXT_LENGTH must be positive", domain.ErrInvalidConfig)
	}

	if c.Submission.MaxFileSize < 1024 {
		return fmt.Errorf("%w: MAX_FILE_SIZE must be at least 1024 bytes", domain.ErrInvalidConfig)
	}

	return nil
}

// Environment returns the effective environment: the explicit override if
// set, otherwise the one detected from Host.
func (c *Config) Environment() endpoint.Environment {
	if c.Service.Environment != "" {
		if env, err := endpoint.ParseEnvironment(c.Service.Environment); err == nil {
			return env
		}
	}
	return endpoint.Detect(c.Service.Host)
}

// Profiles returns the endpoint profile table, overlaid with the endpoints
// file when one is configured.
func (c *Config) Profiles() (map[endpoint.Environment]endpoint.Profile, error) {
	profiles := map[endpoint.Environment]endpoint.Profile{
		endpoint.EnvLocal:  {BaseURL: c.Service.LocalBaseURL},
		endpoint.EnvHosted: {BaseURL: c.Service.HostedBaseURL},
	}

	if c.Service.EndpointsFile == "" {
		return profiles, nil
	}

	return endpoint.LoadProfiles(c.Service.EndpointsFile, profiles)
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL, got %q", domain.ErrInvalidConfig, key, raw)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
