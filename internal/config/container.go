package config

import (
	"context"

	"pdf-unlocker/internal/domain"
	"pdf-unlocker/internal/pdf"
	"pdf-unlocker/internal/repository"
	"pdf-unlocker/internal/service"
	"pdf-unlocker/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SessionService *service.SessionService
	ExportService  *service.ExportService

	naming *service.NamingService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	parser := pdf.NewParser(appLogger)
	fallback := pdf.NewFallbackParser()
	builder := pdf.NewBuilder()
	sessionRepo := repository.NewMemorySessionRepository(appLogger)
	engine := service.NewUnlockEngine(parser, fallback, builder, appLogger)

	// Filename suggestions are optional; a failed Vertex AI setup must not
	// keep the unlocker from serving.
	var naming *service.NamingService
	if config.AISuggestionsEnabled() {
		n, err := service.NewNamingService(
			context.Background(),
			config.GetGoogleProject(),
			config.GetGoogleLocation(),
			parser,
			appLogger,
		)
		if err != nil {
			appLogger.Warn("AI name suggestions unavailable", "error", err)
		} else {
			naming = n
		}
	}

	var suggester domain.NamingSuggester
	if naming != nil {
		suggester = naming
	}
	sessionService := service.NewSessionService(sessionRepo, engine, suggester, appLogger)
	exportService := service.NewExportService(sessionRepo, appLogger)

	return &Container{
		Config:         config,
		Logger:         appLogger,
		SessionService: sessionService,
		ExportService:  exportService,
		naming:         naming,
	}
}

// Close releases held clients. Safe to call when nothing was initialized.
func (c *Container) Close() {
	if c.naming != nil {
		c.naming.Close()
	}
}
