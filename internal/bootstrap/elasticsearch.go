package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/registry"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/server"
)

// SetupRegistry builds connections, schemas and indices from configuration.
func SetupRegistry(cfg *config.Config, log logger.Logger, opts ...elasticsearch.Option) (*registry.Registry, error) {
	reg, err := registry.Build(cfg, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	log.Info("Registry built",
		logger.Int("connections", len(reg.Connections())),
		logger.Int("schemas", len(reg.Schemas())),
		logger.Int("indices", len(reg.Indices())),
	)
	return reg, nil
}

// PingConnections waits for every cluster to answer. Failures are logged and
// do not stop startup; /health reports them.
func PingConnections(ctx context.Context, reg *registry.Registry, log logger.Logger) {
	for _, conn := range reg.Connections() {
		if err := conn.Ping(ctx); err != nil {
			log.Warn("Elasticsearch connection unavailable",
				logger.String("connection", conn.ID()),
				logger.Strings("hosts", conn.Hosts()),
				logger.Error(err),
			)
			continue
		}
		log.Info("Elasticsearch connection ready", logger.String("connection", conn.ID()))
	}
}

// healthChecks returns one check per connection, plus the database when connected.
func healthChecks(reg *registry.Registry, pinger func(context.Context) error) map[string]server.HealthCheck {
	checks := make(map[string]server.HealthCheck, len(reg.Connections())+1)
	for _, conn := range reg.Connections() {
		checks["elasticsearch."+conn.ID()] = conn.Ping
	}
	if pinger != nil {
		checks["database"] = pinger
	}
	return checks
}
