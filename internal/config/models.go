// filepath: internal/config/models.go
package config

import "time"

// Config holds the application's configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Bootstrap BootstrapConfig `toml:"bootstrap"`
	Seed      SeedConfig      `toml:"seed"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`

	ConnectTimeout time.Duration `toml:"-"` // Runtime computed value
	StartupDelay   time.Duration `toml:"-"` // Runtime computed value

	ReplicationTimeout time.Duration `toml:"-"` // Runtime computed value
}

// DatabaseConfig selects and addresses the target database.
// URI takes precedence over the individual connection fields.
type DatabaseConfig struct {
	Driver         string `toml:"driver"` // "mongo" or "sqlite"
	URI            string `toml:"uri"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Name           string `toml:"name"`
	ReplicaSet     string `toml:"replica_set"`
	AuthSource     string `toml:"auth_source"`
	ConnectTimeout string `toml:"connect_timeout"` // e.g. "10s"
	Path           string `toml:"path"`            // sqlite only
}

// BootstrapConfig parameterizes a run.
type BootstrapConfig struct {
	StartupDelay       string `toml:"startup_delay"` // e.g. "5s"; empty means the profile default
	Profile            string `toml:"profile"`       // "standalone" or "replica-set"
	Probe              bool   `toml:"probe"`
	FailOnError        bool   `toml:"fail_on_error"`
	ReplicationTimeout string `toml:"replication_timeout"` // replica-set profile only

}

// SeedConfig controls the sample records.
type SeedConfig struct {
	File             string `toml:"file"` // empty: built-in defaults
	PasswordScheme   string `toml:"password_scheme"`
	PBKDF2Iterations int    `toml:"pbkdf2_iterations"`
	ClearPasswords   bool   `toml:"clear_passwords"`
	Disabled         bool   `toml:"disabled"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level        string `toml:"level"`
	Format       string `toml:"format"` // "json" or "text"
	AuditEnabled bool   `toml:"audit_enabled"`
}

// MetricsConfig points at a Pushgateway. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `toml:"pushgateway_url"`
	Job            string `toml:"job"`
}
