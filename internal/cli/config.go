package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mealmap/backend/config"
)

// redacted replaces configured secrets in config show output
const redacted = "********"

func newConfigCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mealmap configuration",
		Long: `Inspect mealmap configuration.

Configuration hierarchy (highest to lowest priority):
1. Environment variables (MEALMAP_*)
2. Config file (--config, ./config.yaml, /etc/mealmap/config.yaml)
3. Defaults`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(redact(*cfg))
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}

// redact masks credentials on a copy of cfg
func redact(cfg config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	mask(&cfg.USDA.APIKey)
	mask(&cfg.Nutritionix.AppKey)
	mask(&cfg.FoodID.APIKey)
	return cfg
}
