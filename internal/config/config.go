package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/mapping"
)

// Default configuration values.
const (
	defaultServiceName     = "elastic-tool"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8095
	defaultShutdownTimeout = 15 * time.Second
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "elastic_tool"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 10
	defaultDBMaxIdleConns  = 2
	defaultDBConnLifetime  = 5 * time.Minute
	defaultESURL           = "http://localhost:9200"
	defaultESMaxRetries    = 3
	defaultESPingTimeout   = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"

	// DefaultConnection is the connection used by indices that name none.
	DefaultConnection = "default"
)

// Config holds the application configuration.
type Config struct {
	Service     ServiceConfig               `yaml:"service"`
	Logging     LoggingConfig               `yaml:"logging"`
	Database    DatabaseConfig              `yaml:"database"`
	Connections map[string]ConnectionConfig `yaml:"connections"`
	Schemas     map[string]SchemaConfig     `yaml:"schemas"`
	Indices     map[string]IndexConfig      `yaml:"indices"`
}

// ServiceConfig holds HTTP service configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"ELASTIC_TOOL_PORT" yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"         yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// DatabaseConfig holds the optional operation journal database.
type DatabaseConfig struct {
	Enabled               bool          `env:"ELASTIC_TOOL_DB_ENABLED"  yaml:"enabled"`
	Host                  string        `env:"ELASTIC_TOOL_DB_HOST"     yaml:"host"`
	Port                  int           `env:"ELASTIC_TOOL_DB_PORT"     yaml:"port"`
	User                  string        `env:"ELASTIC_TOOL_DB_USER"     yaml:"user"`
	Password              string        `env:"ELASTIC_TOOL_DB_PASSWORD" yaml:"password"`
	Database              string        `env:"ELASTIC_TOOL_DB_NAME"     yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// ConnectionConfig describes one Elasticsearch cluster.
type ConnectionConfig struct {
	Hosts         []string      `yaml:"hosts"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	APIKey        string        `yaml:"api_key"`
	CloudID       string        `yaml:"cloud_id"`
	MaxRetries    int           `yaml:"max_retries"`
	EnableLogging bool          `yaml:"enable_logging"`
	PingTimeout   time.Duration `yaml:"ping_timeout"`
}

// SchemaConfig declares an index mapping.
type SchemaConfig struct {
	Name       string             `yaml:"name"`
	Version    string             `yaml:"version"`
	Params     map[string]any     `yaml:"params"`
	Properties mapping.Properties `yaml:"properties"`
	Aliases    mapping.Aliases    `yaml:"aliases"`
}

// IndexConfig declares an index.
type IndexConfig struct {
	Name       string        `yaml:"name"`
	Connection string        `yaml:"connection"`
	Schema     string        `yaml:"schema"`
	Group      string        `yaml:"group"`
	Settings   IndexSettings `yaml:"settings"`
}

// IndexSettings are index settings. Main applies to create and update;
// Create and Update add to it for their operation.
type IndexSettings struct {
	Main   map[string]any `yaml:"main"`
	Create map[string]any `yaml:"create"`
	Update map[string]any `yaml:"update"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, SetDefaults)
}

// SetDefaults applies default values to the config.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging)
	setDatabaseDefaults(&cfg.Database)
	setConnectionDefaults(cfg)
	setIndexDefaults(cfg)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetime
	}
}

// setConnectionDefaults fills in connection defaults. ELASTICSEARCH_URL
// replaces the hosts of the default connection, creating it if needed.
func setConnectionDefaults(cfg *Config) {
	if cfg.Connections == nil {
		cfg.Connections = make(map[string]ConnectionConfig)
	}
	if url := os.Getenv("ELASTICSEARCH_URL"); url != "" {
		conn := cfg.Connections[DefaultConnection]
		conn.Hosts = splitList(url)
		cfg.Connections[DefaultConnection] = conn
	}
	if len(cfg.Connections) == 0 {
		cfg.Connections[DefaultConnection] = ConnectionConfig{}
	}

	for id, conn := range cfg.Connections {
		if len(conn.Hosts) == 0 {
			conn.Hosts = []string{defaultESURL}
		}
		if conn.MaxRetries == 0 {
			conn.MaxRetries = defaultESMaxRetries
		}
		if conn.PingTimeout == 0 {
			conn.PingTimeout = defaultESPingTimeout
		}
		cfg.Connections[id] = conn
	}
}

func setIndexDefaults(cfg *Config) {
	for id, idx := range cfg.Indices {
		if idx.Connection == "" {
			idx.Connection = DefaultConnection
		}
		cfg.Indices[id] = idx
	}
}

// Validate validates the service-level configuration. Connections, schemas and
// indices are validated when the registry is built from them.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := ValidateLogLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	if err := ValidateLogFormat("logging.format", c.Logging.Format); err != nil {
		return err
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return &ValidationError{Field: "database.host", Message: "is required"}
		}
		if err := ValidatePort("database.port", c.Database.Port); err != nil {
			return err
		}
	}
	return nil
}
