package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage short links",
}

var linkDeleteCmd = &cobra.Command{
	Use:   "delete <code>",
	Short: "Delete a short link and evict it from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inf, err := setupInfra(ctx, cfg, true)
		if err != nil {
			return errors.Wrap(err, "setup infra failed")
		}
		defer inf.close()

		repositories, err := createRepos(inf, cfg, nil)
		if err != nil {
			return errors.Wrap(err, "create repos failed")
		}
		if err := createLinkUseCase(repositories, cfg, inf.logger).Delete(ctx, args[0]); err != nil {
			return errors.Wrap(err, "delete link failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "link %s deleted\n", args[0])
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run one round of expired link maintenance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inf, err := setupInfra(ctx, cfg, true)
		if err != nil {
			return errors.Wrap(err, "setup infra failed")
		}
		defer inf.close()

		repositories, err := createRepos(inf, cfg, nil)
		if err != nil {
			return errors.Wrap(err, "create repos failed")
		}
		result, err := createLinkUseCase(repositories, cfg, inf.logger).RunMaintenance(ctx)
		if err != nil {
			return errors.Wrap(err, "run maintenance failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "expired: %d, deleted: %d, synced: %d\n", result.ExpiredCodes, result.DeletedLinks, result.SyncedCodes)
		return nil
	},
}

func init() {
	linkCmd.AddCommand(linkDeleteCmd)
	rootCmd.AddCommand(linkCmd, cleanupCmd)
}
