// filepath: internal/cli/config_loader.go
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"streamdb/internal/config"
	"streamdb/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":     "logging.level",
	"driver":        "database.driver",
	"uri":           "database.uri",
	"database":      "database.name",
	"db-path":       "database.path",
	"startup-delay": "bootstrap.startup_delay",
	"profile":       "bootstrap.profile",
	"seed-file":     "seed.file",
	"no-seed":       "seed.disabled",
	"audit-enabled": "logging.audit_enabled",
}

// legacyEnv are the variable names used by the existing container setup.
var legacyEnv = map[string][]string{
	"database.host":        {"MONGODB_PRIMARY_HOST", "MONGODB_HOST"},
	"database.port":        {"MONGODB_PRIMARY_PORT", "MONGODB_PORT"},
	"database.username":    {"MONGODB_USERNAME"},
	"database.password":    {"MONGODB_PASSWORD"},
	"database.name":        {"MONGODB_DATABASE"},
	"database.replica_set": {"MONGODB_REPLICA_SET"},
	"database.uri":         {"MONGODB_URI"},
}

// initializeConfig loads the configuration in order of increasing
// precedence: defaults, TOML file, environment (after the dotenv file), flags.
func (options *GlobalOptions) initializeConfig(cmd *cobra.Command) error {
	// 1. dotenv file, never overriding the real environment
	if err := godotenv.Load(options.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", options.EnvFile, err)
	}

	// 2. Check environment variable for config path first
	if envPath := os.Getenv("STREAMDB_CONFIG_PATH"); envPath != "" && !cmd.Flags().Changed("config_path") {
		options.CfgFilePath = envPath
	}

	cfg, err := config.LoadConfig(options.CfgFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", options.CfgFilePath, err)
	}

	// 3. Apply Overrides (Env Vars and CLI Flags)
	if err := options.bind(cmd); err != nil {
		return err
	}
	options.applyOverrides(cfg, cmd)

	// 4. Validate
	if err := cfg.ParseAndValidate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// 5. Initialize Logging
	options.Conf = cfg
	options.Logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	options.Logger.Debugf("Configuration loaded from %s", options.CfgFilePath)
	return nil
}

func (options *GlobalOptions) bind(cmd *cobra.Command) error {
	v := options.viper
	v.SetEnvPrefix("STREAMDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (options *GlobalOptions) applyOverrides(c *config.Config, cmd *cobra.Command) {
	v := options.viper
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	// --- Database ---
	str("database.driver", &c.Database.Driver)
	str("database.uri", &c.Database.URI)
	str("database.host", &c.Database.Host)
	integer("database.port", &c.Database.Port)
	str("database.username", &c.Database.Username)
	str("database.password", &c.Database.Password)
	str("database.name", &c.Database.Name)
	str("database.replica_set", &c.Database.ReplicaSet)
	str("database.auth_source", &c.Database.AuthSource)
	str("database.connect_timeout", &c.Database.ConnectTimeout)
	str("database.path", &c.Database.Path)

	// --- Bootstrap ---
	str("bootstrap.startup_delay", &c.Bootstrap.StartupDelay)
	str("bootstrap.profile", &c.Bootstrap.Profile)
	boolean("bootstrap.probe", &c.Bootstrap.Probe)
	boolean("bootstrap.fail_on_error", &c.Bootstrap.FailOnError)
	str("bootstrap.replication_timeout", &c.Bootstrap.ReplicationTimeout)

	// --- Seed ---
	str("seed.file", &c.Seed.File)
	str("seed.password_scheme", &c.Seed.PasswordScheme)
	integer("seed.pbkdf2_iterations", &c.Seed.PBKDF2Iterations)
	boolean("seed.clear_passwords", &c.Seed.ClearPasswords)
	boolean("seed.disabled", &c.Seed.Disabled)

	// --- Logging ---
	str("logging.level", &c.Logging.Level)
	str("logging.format", &c.Logging.Format)
	boolean("logging.audit_enabled", &c.Logging.AuditEnabled)

	// --- Metrics ---
	str("metrics.pushgateway_url", &c.Metrics.PushgatewayURL)
	str("metrics.job", &c.Metrics.Job)

	// --no-probe has no positive key to bind to
	if noProbe, ok := changedBool(cmd.Flags(), "no-probe"); ok {
		c.Bootstrap.Probe = !noProbe
	}
}

// changedBool returns the value of a boolean flag and whether it was set
// on the command line.
func changedBool(flags *pflag.FlagSet, name string) (bool, bool) {
	f := flags.Lookup(name)
	if f == nil || !f.Changed {
		return false, false
	}
	v, err := flags.GetBool(name)
	return v, err == nil
}
