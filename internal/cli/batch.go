package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealmap/backend/internal/app"
)

func newBatchCommand(opts *options) *cobra.Command {
	var (
		delay       time.Duration
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Resolve every menu item listed in a file",
		Long: `Batch reads menu items from a file (one per line, # starts a comment)
and resolves them in order. Items that needed a network lookup are followed
by a pause so upstream services are not flooded; cache hits are not.

Example:
  mealmap batch menu.txt
  mealmap batch menu.txt --delay 0 --concurrency 4
  mealmap batch - < menu.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItemsFrom(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no items found in %s", args[0])
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				cfg.Batch.ItemDelay = delay
				if delay == 0 {
					cfg.Batch.ItemDelay = -1
				}
			}
			if cmd.Flags().Changed("concurrency") {
				if concurrency < 1 {
					return fmt.Errorf("concurrency must be at least 1, got: %d", concurrency)
				}
				cfg.Batch.Concurrency = concurrency
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			engine, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Resolving %d items (concurrency %d)\n", len(items), cfg.Batch.Concurrency)

			result, runErr := engine.Batch.ResolveAll(ctx, items)
			if result != nil {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				available := 0
				for _, r := range result.Results {
					if r != nil && r.IsAvailable {
						available++
					}
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Done: %d/%d resolved, %d available\n", result.Completed, len(items), available)
			}
			return runErr
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 750*time.Millisecond, "pause after each networked lookup (0 disables)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of items resolved in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "total timeout for the batch")
	return cmd
}

// readItemsFrom reads items from path, or from stdin when path is "-"
func readItemsFrom(path string, stdin io.Reader) ([]string, error) {
	if path == "-" {
		return readItems(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer f.Close()
	return readItems(f)
}

// readItems returns the non-blank, non-comment lines of r. Lines may be of
// any length.
func readItems(r io.Reader) ([]string, error) {
	var items []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read items: %w", err)
		}
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			items = append(items, line)
		}
		if err != nil {
			return items, nil
		}
	}
}
