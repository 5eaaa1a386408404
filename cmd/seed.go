package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SweetDelights/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import cakes from a YAML catalog",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "cakes.yaml", "Catalog file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	catalog, err := seed.LoadFile(seedFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", seedFile, err)
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := seed.Apply(cmd.Context(), store, catalog)
	if err != nil {
		return err
	}
	logger.Info("catalog imported", zap.String("file", seedFile), zap.Int("cakes", n))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d cakes\n", n)
	return nil
}
