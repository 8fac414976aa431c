package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	apiKeyName      string
	apiKeyRateLimit int
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage api keys",
}

var apiKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new api key and print it once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inf, err := setupInfra(ctx, cfg, false)
		if err != nil {
			return errors.Wrap(err, "setup infra failed")
		}
		defer inf.close()

		repositories, err := createRepos(inf, cfg, nil)
		if err != nil {
			return errors.Wrap(err, "create repos failed")
		}
		plainKey, apiKey, err := createAPIKeyUseCase(repositories, cfg, inf.logger).Generate(ctx, apiKeyName, apiKeyRateLimit)
		if err != nil {
			return errors.Wrap(err, "generate api key failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "id:         %d\nname:       %s\nrate limit: %d/hour\nkey:        %s\n", apiKey.ID, apiKey.Name, apiKey.RateLimit, plainKey)
		fmt.Fprintln(cmd.OutOrStdout(), "store the key now, it can not be shown again")
		return nil
	},
}

var apiKeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List api keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inf, err := setupInfra(ctx, cfg, false)
		if err != nil {
			return errors.Wrap(err, "setup infra failed")
		}
		defer inf.close()

		repositories, err := createRepos(inf, cfg, nil)
		if err != nil {
			return errors.Wrap(err, "create repos failed")
		}
		apiKeys, err := createAPIKeyUseCase(repositories, cfg, inf.logger).List(ctx)
		if err != nil {
			return errors.Wrap(err, "list api keys failed")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRATE LIMIT\tACTIVE\tCREATED\tLAST USED")
		for _, apiKey := range apiKeys {
			lastUsedAt := "-"
			if apiKey.LastUsedAt != nil {
				lastUsedAt = apiKey.LastUsedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%s\t%s\n", apiKey.ID, apiKey.Name, apiKey.RateLimit, apiKey.IsActive, apiKey.CreatedAt.Format(time.RFC3339), lastUsedAt)
		}
		return w.Flush()
	},
}

var apiKeyDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate an api key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrap(err, "parse id failed")
		}

		ctx := cmd.Context()
		inf, err := setupInfra(ctx, cfg, false)
		if err != nil {
			return errors.Wrap(err, "setup infra failed")
		}
		defer inf.close()

		repositories, err := createRepos(inf, cfg, nil)
		if err != nil {
			return errors.Wrap(err, "create repos failed")
		}
		if err := createAPIKeyUseCase(repositories, cfg, inf.logger).Deactivate(ctx, id); err != nil {
			return errors.Wrap(err, "deactivate api key failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "api key %d deactivated\n", id)
		return nil
	},
}

func init() {
	apiKeyGenerateCmd.Flags().StringVar(&apiKeyName, "name", "", "name of the key owner")
	apiKeyGenerateCmd.Flags().IntVar(&apiKeyRateLimit, "rate-limit", 0, "requests per hour, 0 uses API_KEY_RATE_LIMIT")
	apiKeyGenerateCmd.MarkFlagRequired("name")

	apiKeyCmd.AddCommand(apiKeyGenerateCmd, apiKeyListCmd, apiKeyDeactivateCmd)
	rootCmd.AddCommand(apiKeyCmd)
}

