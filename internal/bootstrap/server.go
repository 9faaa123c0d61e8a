package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/api"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/database"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/metrics"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/server"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/service"
)

// SetupHTTPServer wires the services into the HTTP server. db may be nil.
func SetupHTTPServer(
	cfg *config.Config,
	reg *registry.Registry,
	indexService *service.IndexService,
	m *metrics.Metrics,
	db *database.Connection,
	log logger.Logger,
) *server.Server {
	documentService := service.NewDocumentService(reg, m, log)
	handler := api.NewHandler(reg, indexService, documentService, log)

	var dbPing func(context.Context) error
	if db != nil {
		dbPing = db.DB.PingContext
	}

	return server.New(server.Config{
		ServiceName:     cfg.Service.Name,
		ServiceVersion:  cfg.Service.Version,
		Port:            cfg.Service.Port,
		Debug:           cfg.Service.Debug,
		ShutdownTimeout: cfg.Service.ShutdownTimeout,
	}, log, server.Options{
		Checks:  healthChecks(reg, dbPing),
		Metrics: m.Handler(),
		Routes: func(router *gin.Engine) {
			api.SetupRoutes(router, handler)
		},
	})
}
