package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/usecases"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the prompt pool to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a JSON snapshot into the prompt pool",
	Long: `Appends every prompt of the snapshot whose ID is not in the pool yet.
Existing prompts are never modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// withSnapshot opens the configured prompt store for the duration of fn.
func withSnapshot(ctx context.Context, fn func(*usecases.SnapshotService) error) error {
	cfg, err := truth_or_dare.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}

	stores, err := truth_or_dare.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("failed to close stores", "error", err)
		}
	}()

	return fn(usecases.NewSnapshotService(stores.Prompts, logger))
}

func runExport(cmd *cobra.Command, args []string) error {
	return withSnapshot(cmd.Context(), func(snapshots *usecases.SnapshotService) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}

		n, err := snapshots.Export(cmd.Context(), f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d prompts to %s\n", n, args[0])
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	return withSnapshot(cmd.Context(), func(snapshots *usecases.SnapshotService) error {
		output, err := snapshots.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, invalid %d\n",
			output.Added, output.Skipped, output.Invalid)
		return nil
	})
}
