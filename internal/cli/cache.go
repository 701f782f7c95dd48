package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mealmap/backend/internal/app"
)

func newCacheCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the resolution cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove expired entries from the persistent cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			cacheRepo, closeCache, err := app.NewCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer closeCache()

			engine := &app.Engine{Config: cfg, Cache: cacheRepo}
			removed, err := engine.PurgeCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("purge cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries from %s cache\n", removed, cfg.Cache.Type)
			return nil
		},
	})
	return cmd
}
