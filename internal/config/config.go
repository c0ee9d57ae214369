package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"streamdb/internal/credentials"
	"streamdb/internal/shared"
	"streamdb/internal/storage"

	"github.com/BurntSushi/toml"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	ProfileStandalone = "standalone"
	ProfileReplicaSet = "replica-set"

	// ReplicaSetDelay is the startup delay implied by the replica-set profile.
	ReplicaSetDelay = "5s"
)

// Default returns the configuration used for keys missing from every source.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverMongo,
			Host:           "localhost",
			Port:           27017,
			Name:           "streamdb",
			AuthSource:     "admin",
			ConnectTimeout: "10s",
			Path:           "streamdb.db",
		},
		Bootstrap: BootstrapConfig{
			Profile:            ProfileStandalone,
			Probe:              true,
			FailOnError:        true,
			ReplicationTimeout: "10s",
		},
		Seed: SeedConfig{
			PasswordScheme:   credentials.SchemePBKDF2,
			PBKDF2Iterations: credentials.DefaultIterations,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Job: "streamdb_bootstrap",
		},
	}
}

// LoadConfig loads the configuration from a TOML file on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	if _, err := toml.DecodeFile(path, config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration to a TOML file.
func SaveConfig(path string, cfg *Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return fmt.Errorf("trying to save the config: %w", shared.ErrorEncodeFile)
	}
	if _, err := storage.SaveFile(buf, path, 0644); err != nil {
		return fmt.Errorf("trying to save the config: %w: %v", shared.ErrorCreateFile, err)
	}
	return nil
}

// ParseAndValidate processes configuration strings into runtime values.
func (c *Config) ParseAndValidate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver %q (want %s or %s)", c.Database.Driver, DriverMongo, DriverSQLite)
	}
	if !shared.SafeNameRegex.MatchString(c.Database.Name) {
		return fmt.Errorf("invalid database name %q: %w", c.Database.Name, shared.ErrInvalidName)
	}

	timeout, err := shared.ParseDuration(c.Database.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("invalid connect_timeout: %w", err)
	}
	c.ConnectTimeout = timeout

	switch c.Bootstrap.Profile {
	case "", ProfileStandalone:
		c.Bootstrap.Profile = ProfileStandalone
	case ProfileReplicaSet:
		// The profile implies the delay unless one is configured, "0" included.
		if c.Bootstrap.StartupDelay == "" {
			c.Bootstrap.StartupDelay = ReplicaSetDelay
		}
	default:
		return fmt.Errorf("invalid bootstrap profile %q (want %s or %s)", c.Bootstrap.Profile, ProfileStandalone, ProfileReplicaSet)
	}

	delay, err := shared.ParseDuration(c.Bootstrap.StartupDelay)
	if err != nil {
		return fmt.Errorf("invalid startup_delay: %w", err)
	}
	c.StartupDelay = delay

	replication, err := shared.ParseDuration(c.Bootstrap.ReplicationTimeout)
	if err != nil {
		return fmt.Errorf("invalid replication_timeout: %w", err)
	}
	c.ReplicationTimeout = replication

	if _, err := credentials.NewHasher(c.Seed.PasswordScheme, c.Seed.PBKDF2Iterations); err != nil {
		return fmt.Errorf("invalid seed settings: %w", err)
	}

	if c.Metrics.PushgatewayURL != "" {
		if _, err := url.ParseRequestURI(c.Metrics.PushgatewayURL); err != nil {
			return fmt.Errorf("invalid pushgateway_url: %w", err)
		}
	}
	return nil
}

// MongoURI returns the configured URI, or builds one from the connection fields.
func (d DatabaseConfig) MongoURI() string {
	if d.URI != "" {
		return d.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.Username != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	}

	q := url.Values{}
	if d.ReplicaSet != "" {
		q.Set("replicaSet", d.ReplicaSet)
	}
	if d.Username != "" && d.AuthSource != "" {
		q.Set("authSource", d.AuthSource)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Actor is the identity recorded in audit events.
func (d DatabaseConfig) Actor() string {
	if d.Username != "" {
		return d.Username
	}
	return "anonymous"
}

// IsReplicaSet reports whether replica status should be checked.
func (c *Config) IsReplicaSet() bool {
	return c.Database.ReplicaSet != "" || c.Bootstrap.Profile == ProfileReplicaSet
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	const mask = "********"
	if c.Database.Password != "" {
		c.Database.Password = mask
	}
	if u, err := url.Parse(c.Database.URI); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), mask)
			c.Database.URI = u.String()
		}
	}
	return c
}

// WithoutSecrets returns a copy safe to write to disk: passwords are removed
// so they keep coming from the environment.
func (c Config) WithoutSecrets() Config {
	c.Database.Password = ""
	if u, err := url.Parse(c.Database.URI); err == nil && u.User != nil {
		u.User = url.User(u.User.Username())
		c.Database.URI = u.String()
	}
	return c
}
