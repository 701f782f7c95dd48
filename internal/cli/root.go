// Package cli implements the mealmap command line tool.
package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/mealmap/backend/config"
	httpDelivery "github.com/mealmap/backend/internal/delivery/http"
)

// options carries the persistent flags shared by every subcommand
type options struct {
	cfgFile string
	verbose bool
}

// loadConfig reads the file named by --config, or searches the default paths
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Matching.EnableDebugLogging = true
	}
	return cfg, nil
}

// NewRootCommand builds the mealmap command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "mealmap",
		Short: "MealMap - approximate nutrition for free-text menu items",
		Long: `mealmap resolves restaurant menu item names to approximate nutrition
ranges by cleaning the text and walking a chain of nutrition sources:
local ingredients, the USDA reference database, exact restaurant lookups,
packaged products and a restaurant food-identifier service.

Results are cached, so repeated lookups never touch the network.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Engine logs are only interesting with --verbose
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config.yaml or /etc/mealmap/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose matching logs")

	root.AddCommand(
		newVersionCommand(),
		newResolveCommand(opts),
		newBatchCommand(opts),
		newConfigCommand(opts),
		newCacheCommand(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mealmap %s\n", httpDelivery.Version)
		},
	}
}
