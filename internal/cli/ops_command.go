// filepath: internal/cli/ops_command.go
package cli

import (
	"context"
	"fmt"
	"io"

	"streamdb/internal/bootstrap"
	"streamdb/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// withInitializer opens the store and hands a single-purpose initializer to fn.
func withInitializer(ctx context.Context, globalOptions *GlobalOptions, fn func(*bootstrap.Initializer) error) error {
	store, err := openStore(ctx, globalOptions.Conf, globalOptions.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore(store, globalOptions.Logger)

	opts := bootstrap.Options{
		RunID:              uuid.NewString(),
		Actor:              globalOptions.Conf.Database.Actor(),
		ReplicationTimeout: globalOptions.Conf.ReplicationTimeout,
	}
	return fn(bootstrap.New(store, opts, globalOptions.Logger, nil))
}

func NewStatsCommand(globalOptions *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print storage statistics of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInitializer(cmd.Context(), globalOptions, func(in *bootstrap.Initializer) error {
				res, stats := in.ReportStatistics(cmd.Context())
				if res.Err != nil {
					return res.Err
				}
				printStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

func NewProbeCommand(globalOptions *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Insert and remove a test document to verify the write path",
		Long: `Inserts and removes a test document on the primary. With the replica-set
profile the document is also read back from a secondary and the replication
lag is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInitializer(cmd.Context(), globalOptions, func(in *bootstrap.Initializer) error {
				res := in.VerifyWritePath(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), res.String())
				if res.Err != nil || !globalOptions.Conf.IsReplicaSet() {
					return res.Err
				}
				res, replication := in.CheckReplication(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), res.String())
				if replication != nil {
					printReplication(cmd.OutOrStdout(), replication)
				}
				return res.Err
			})
		},
	}
}

func NewReplicaCommand(globalOptions *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "replica",
		Aliases: []string{"replica-status"},
		Short:   "Print the replica set members and their health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInitializer(cmd.Context(), globalOptions, func(in *bootstrap.Initializer) error {
				res, status := in.ReportReplicaStatus(cmd.Context())
				if res.Err != nil {
					return res.Err
				}
				if status == nil {
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
					return nil
				}
				printReplica(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func printReplication(w io.Writer, r *bootstrap.Replication) {
	fmt.Fprintf(w, "Replication lag: %.3fs (%d read(s) from a secondary)\n", r.Lag.Seconds(), r.Attempts)
}

func printReplica(w io.Writer, status *repository.ReplicaStatus) {
	fmt.Fprintf(w, "Replica set: %s (primary %s)\n", status.SetName, status.Primary)
	for _, m := range status.Members {
		self := ""
		if m.IsSelf {
			self = " (self)"
		}
		fmt.Fprintf(w, "  - %s: %s health=%.0f ping=%dms%s\n", m.Name, m.State, m.Health, m.PingMs, self)
	}
	if !status.Healthy() {
		fmt.Fprintln(w, "  WARNING: fewer than two healthy members")
	}
}
