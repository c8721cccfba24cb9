package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/email-classifier/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout is how long in-flight console requests get to finish.
const shutdownTimeout = 10 * time.Second

func NewServeCommand(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operator console",
		Long: `Run an HTTP console exposing the controller: status, health checks, file
selection and classification. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default $PORT or 8080)")

	return cmd
}

func runServe(ctx context.Context, root *rootOptions, port string) error {
	a, err := newApp(root, true)
	if err != nil {
		return err
	}
	defer a.Close()

	notifications := handler.NewNotificationLog(0, a.logger)
	a.startController(notifications)

	if port == "" {
		port = a.cfg.Server.Port
	}

	a.logger.Info("starting email classifier console",
		zap.String("port", port),
		zap.String("environment", string(a.controller.Environment())),
		zap.Bool("mock_mode", a.cfg.Service.MockMode),
	)

	availability := a.controller.CheckHealth(ctx)
	a.logger.Info("initial health check", zap.String("availability", string(availability)))

	if os.Getenv("APP_MODE") != "development" && !root.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler.NewRouter(a.controller, notifications, a.logger),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-errCh:
		a.logger.Error("server failed", zap.Error(err))
		return err
	}

	a.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
	}

	a.logger.Info("server stopped")
	return nil
}
