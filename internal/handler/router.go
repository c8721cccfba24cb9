package handler

import (
	"github.com/email-classifier/internal/classifier"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the console router with the standard middleware chain.
func NewRouter(controller *classifier.Controller, notifications *NotificationLog, logger *zap.Logger) *gin.Engine {
	consoleHandler := NewConsoleHandler(controller, notifications, logger)
	healthHandler := NewHealthHandler(logger)

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware())

	router.GET("/health", healthHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", consoleHandler.Status)
		v1.POST("/health-check", consoleHandler.HealthCheck)
		v1.POST("/classify", consoleHandler.Classify)
		v1.POST("/file", consoleHandler.SelectFile)
		v1.DELETE("/file", consoleHandler.RemoveFile)
		v1.DELETE("/result", consoleHandler.Clear)
	}

	return router
}
