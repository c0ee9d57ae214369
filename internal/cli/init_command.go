// filepath: internal/cli/init_command.go
package cli

import (
	"fmt"

	"streamdb/internal/bootstrap"
	"streamdb/internal/credentials"
	"streamdb/internal/logging/audit"
	"streamdb/internal/metrics"
	"streamdb/internal/schema"
	"streamdb/internal/seed"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type InitOptions struct {
	StartupDelay string
	Profile      string
	SeedFile     string
	NoSeed       bool
	NoProbe      bool
	AuditEnabled bool
}

func NewInitCommand(globalOptions *GlobalOptions) *cobra.Command {

	initOptions := &InitOptions{}

	initCommand := &cobra.Command{
		Use:     "init",
		Aliases: []string{"bootstrap"},
		Short:   "Create collections, indexes and seed data",
		Long: `Brings the database into the state the streaming application expects.
Existing collections, indexes and records are left untouched, so the
command can be run on every deployment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, globalOptions)
		},
	}

	initOptions.registerFlags(initCommand)

	return initCommand
}

func (opt *InitOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opt.StartupDelay, "startup-delay", "", "Wait before the first ping, e.g. 5s. (Env: STREAMDB_BOOTSTRAP_STARTUP_DELAY)")
	cmd.Flags().StringVar(&opt.Profile, "profile", "", "Deployment profile: standalone or replica-set. (Env: STREAMDB_BOOTSTRAP_PROFILE)")
	cmd.Flags().StringVar(&opt.SeedFile, "seed-file", "", "TOML file with users and videos to seed. (Env: STREAMDB_SEED_FILE)")
	cmd.Flags().BoolVar(&opt.NoSeed, "no-seed", false, "Skip seeding sample records.")
	cmd.Flags().BoolVar(&opt.NoProbe, "no-probe", false, "Skip the write-path probe.")
	cmd.Flags().BoolVar(&opt.AuditEnabled, "audit-enabled", false, "Emit audit events for every change. (Env: STREAMDB_LOGGING_AUDIT_ENABLED)")
}

func runInit(cmd *cobra.Command, globalOptions *GlobalOptions) error {
	cfg := globalOptions.Conf
	logger := globalOptions.Logger
	ctx := cmd.Context()
	runID := uuid.NewString()

	var (
		seedFile seed.File
		seeds    []seed.Seed
	)
	if !cfg.Seed.Disabled {
		hasher, err := credentials.NewHasher(cfg.Seed.PasswordScheme, cfg.Seed.PBKDF2Iterations)
		if err != nil {
			return err
		}
		if cfg.Seed.File != "" {
			if seedFile, err = seed.Load(cfg.Seed.File); err != nil {
				return err
			}
			seeds = seedFile.Seeds(hasher, false)
		} else {
			seeds = seed.Default().Seeds(hasher, true)
		}
	}

	opts := bootstrap.Options{
		StartupDelay:  cfg.StartupDelay,
		Collections:   schema.Catalog(),
		Seeds:         seeds,
		Probe:         cfg.Bootstrap.Probe,
		ReplicaStatus: cfg.IsReplicaSet(),
		RunID:         runID,
		Actor:         cfg.Database.Actor(),

		ReplicationCheck:   cfg.IsReplicaSet(),
		ReplicationTimeout: cfg.ReplicationTimeout,
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore(store, logger)

	auditor := audit.NewStdout(logger, cfg.Logging.AuditEnabled, runID)
	report := bootstrap.New(store, opts, logger, auditor).Run(ctx)

	printReport(cmd.OutOrStdout(), report)

	if cfg.Metrics.PushgatewayURL != "" {
		recorder := metrics.New()
		recorder.Observe(report)
		if err := recorder.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, report.Database); err != nil {
			logger.Warnf("Failed to push metrics: %v", err)
		}
	}

	if cfg.Seed.ClearPasswords && cfg.Seed.File != "" && !report.Fatal() {
		seed.ClearPasswords(seedFile, cfg.Seed.File, logger)
	}

	if report.Fatal() {
		if cfg.Bootstrap.FailOnError {
			return fmt.Errorf("bootstrap failed: %w", report.Err())
		}
		logger.Warn("Bootstrap completed with fatal failures; exiting successfully because fail_on_error is disabled")
	}
	return nil
}
