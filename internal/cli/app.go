package cli

import (
	"fmt"
	"os"

	"github.com/email-classifier/internal/classifier"
	"github.com/email-classifier/internal/config"
	"github.com/email-classifier/internal/endpoint"
	"github.com/email-classifier/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the wired set of dependencies a command runs against.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    classifier.Service
	controller *classifier.Controller
	ctrlConfig classifier.ControllerConfig
}

// newApp loads configuration and wires the service. Commands other than
// serve only log warnings and errors unless --debug or LOG_LEVEL says otherwise.
func newApp(opts *rootOptions, verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.env != "" {
		cfg.Service.Environment = opts.env
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.mock {
		cfg.Service.MockMode = true
	}

	development := opts.debug || os.Getenv("APP_MODE") == "development"
	zapLogger, err := logger.New(development)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if !verbose && !opts.debug && os.Getenv("LOG_LEVEL") == "" {
		zapLogger = zapLogger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return nil, err
	}
	env := cfg.Environment()

	var service classifier.Service
	if cfg.Service.MockMode {
		zapLogger.Warn("running in mock mode - classifications are simulated")
		service = classifier.NewMockService(zapLogger)
	} else {
		svc, err := classifier.NewHTTPService(cfg.Service.Origin, zapLogger)
		if err != nil {
			return nil, err
		}
		service = svc
	}

	return &app{
		cfg:     cfg,
		logger:  zapLogger,
		service: service,
		ctrlConfig: classifier.ControllerConfig{
			Environment:          env,
			Endpoints:            endpoint.NewResolver(profiles).Resolve(env),
			Timeout:              cfg.Service.Timeout,
			HealthTimeout:        cfg.Service.HealthTimeout,
			MaxTextLength:        cfg.Submission.MaxTextLength,
			MaxFileSize:          cfg.Submission.MaxFileSize,
			RequireAvailability:  cfg.Submission.RequireAvailability,
			NotificationsEnabled: cfg.Submission.NotificationsEnabled,
		},
	}, nil
}

// startController creates the controller, delivering notifications to
// notifier.
func (a *app) startController(notifier classifier.Notifier) *classifier.Controller {
	a.controller = classifier.NewController(a.ctrlConfig, a.service, notifier, a.logger)

	a.logger.Debug("controller ready",
		zap.String("environment", string(a.ctrlConfig.Environment)),
		zap.Bool("mock_mode", a.cfg.Service.MockMode),
	)
	return a.controller
}

// Close releases the controller and flushes the logger.
func (a *app) Close() {
	if a.controller != nil {
		a.controller.Close()
	}
	_ = a.logger.Sync()
}
