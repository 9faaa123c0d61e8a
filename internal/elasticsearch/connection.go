// Package elasticsearch connects to Elasticsearch clusters and proxies index
// operations for configured indices.
package elasticsearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/config"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/retry"
)

// Connection is a named Elasticsearch client.
type Connection struct {
	id     string
	hosts  []string
	client *es.Client
	cfg    config.ConnectionConfig
	log    logger.Logger
}

// Option customizes a Connection.
type Option func(*es.Config)

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *es.Config) {
		c.Transport = rt
	}
}

// NewConnection builds a client for cfg. It does not contact the cluster; use Ping for that.
func NewConnection(id string, cfg config.ConnectionConfig, log logger.Logger, opts ...Option) (*Connection, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("connection", id))

	hosts := make([]string, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		hosts = append(hosts, normalizeURL(h))
	}

	clientConfig := es.Config{
		Addresses:  hosts,
		MaxRetries: cfg.MaxRetries,
	}

	switch {
	case cfg.CloudID != "":
		clientConfig.CloudID = cfg.CloudID
		clientConfig.Addresses = nil
		clientConfig.APIKey = cfg.APIKey
	case cfg.APIKey != "":
		clientConfig.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	if cfg.EnableLogging {
		clientConfig.Logger = &transportLogger{log: log}
	}

	for _, opt := range opts {
		opt(&clientConfig)
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Elasticsearch client for connection %s: %w", id, err)
	}

	return &Connection{id: id, hosts: hosts, client: client, cfg: cfg, log: log}, nil
}

// ID returns the connection id.
func (c *Connection) ID() string { return c.id }

// Hosts returns the normalized cluster addresses.
func (c *Connection) Hosts() []string { return append([]string(nil), c.hosts...) }

// Client returns the underlying Elasticsearch client.
func (c *Connection) Client() *es.Client { return c.client }

func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// Ping verifies the cluster answers, retrying transient failures with
// exponential backoff. Each attempt is bounded by the configured ping timeout.
func (c *Connection) Ping(ctx context.Context) error {
	c.log.Debug("Verifying Elasticsearch connection", logger.Strings("hosts", c.hosts))

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = c.cfg.MaxRetries + 1

	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		return c.ping(ctx, c.cfg.PingTimeout)
	})
	if err != nil {
		return fmt.Errorf("connect to Elasticsearch (%s): %w", c.id, err)
	}

	c.log.Debug("Elasticsearch connection established")
	return nil
}

func (c *Connection) ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return parseResponseError(res)
	}
	return nil
}

// transportLogger logs every round trip made by the client.
type transportLogger struct {
	log logger.Logger
}

var _ elastictransport.Logger = (*transportLogger)(nil)

func (l *transportLogger) LogRoundTrip(
	req *http.Request, res *http.Response, err error, _ time.Time, dur time.Duration,
) error {
	fields := []logger.Field{
		logger.String("method", req.Method),
		logger.String("url", req.URL.String()),
		logger.Duration("duration", dur),
	}
	if res != nil {
		fields = append(fields, logger.Int("status", res.StatusCode))
	}
	if err != nil {
		l.log.Warn("Elasticsearch request failed", append(fields, logger.Error(err))...)
		return nil
	}
	l.log.Debug("Elasticsearch request", fields...)
	return nil
}

func (l *transportLogger) RequestBodyEnabled() bool  { return false }
func (l *transportLogger) ResponseBodyEnabled() bool { return false }
