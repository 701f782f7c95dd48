package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealmap/backend/internal/app"
	"github.com/mealmap/backend/internal/domain"
)

func newResolveCommand(opts *options) *cobra.Command {
	var (
		timeout time.Duration
		asText  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <item> [item...]",
		Short: "Resolve menu items to nutrition ranges",
		Long: `Resolve one or more menu item names and print the results as JSON.

Example:
  mealmap resolve "Grilled Chicken Caesar Salad"
  mealmap resolve "Tiramisu" "Soup of the Day" --text`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			engine, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			results := make([]*domain.ResolutionResult, 0, len(args))
			for _, item := range args {
				results = append(results, engine.Resolver.Resolve(ctx, item))
			}

			if asText {
				writeText(cmd.OutOrStdout(), results)
				return ctx.Err()
			}
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "total timeout for all lookups")
	cmd.Flags().BoolVar(&asText, "text", false, "print a human readable summary instead of JSON")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// writeText prints one block per result with the nutrient ranges in display order
func writeText(w io.Writer, results []*domain.ResolutionResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		if !r.IsAvailable {
			fmt.Fprintf(w, "%s: unavailable\n", r.Query)
			continue
		}
		fmt.Fprintf(w, "%s -> %s [%s, confidence %.2f, %d matches]\n",
			r.Query, r.MatchedName, r.Tier, r.Confidence, r.MatchCount)

		var parts []string
		for _, n := range r.Nutrition.Nutrients() {
			rng := r.Nutrition[n]
			parts = append(parts, fmt.Sprintf("%s %.1f-%.1f%s", n, rng.Min, rng.Max, rng.Unit))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
	}
}
