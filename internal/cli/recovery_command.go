package cli

import (
	"fmt"

	"streamdb/internal/models"
	"streamdb/internal/schema"

	"github.com/spf13/cobra"
)

type RecoveryOptions struct {
	DryRun bool // If true, report only without editing
}

func NewRecoveryCommand(globalOptions *GlobalOptions) *cobra.Command {

	recoveryOptions := &RecoveryOptions{DryRun: false}

	recoveryCommand := &cobra.Command{
		Use:   "recovery",
		Short: "Remove probe documents left behind by interrupted runs",
		Long: `Scans the replication_test collection for write-path probes that were
not removed (e.g., because the process was killed between insert and delete)
and deletes them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecovery(cmd, globalOptions, recoveryOptions)
		},
	}

	recoveryOptions.registerFlags(recoveryCommand)

	return recoveryCommand

}

func (opt *RecoveryOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&opt.DryRun, "dryrun", false, "If true, report only without editing.")
}

func runRecovery(cmd *cobra.Command, globalOptions *GlobalOptions, recoveryOptions *RecoveryOptions) error {
	logger := globalOptions.Logger
	ctx := cmd.Context()

	store, err := openStore(ctx, globalOptions.Conf, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore(store, logger)

	filter := models.Filter{"type": schema.ProbeType}

	if recoveryOptions.DryRun {
		n, err := store.CountDocuments(ctx, schema.ReplicationTest, filter)
		if err != nil {
			return fmt.Errorf("failed to count stale probes: %w", err)
		}
		logger.Infof("Dry run: %d stale probe(s) would be removed", n)
		fmt.Fprintf(cmd.OutOrStdout(), "%d stale probe(s) found\n", n)
		return nil
	}

	n, err := store.DeleteMany(ctx, schema.ReplicationTest, filter)
	if err != nil {
		return fmt.Errorf("failed to remove stale probes: %w", err)
	}
	logger.WithField("deleted", n).Info("Recovery finished")
	fmt.Fprintf(cmd.OutOrStdout(), "%d stale probe(s) removed\n", n)
	return nil
}
