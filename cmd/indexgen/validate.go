package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/edge"
	"storefront/internal/legacy"
	"storefront/internal/registry"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Load every routing table from dir and report problems",
		Long: "Loads the routing tables the server would load with DATA_DIR=<dir>, " +
			"builds the slug registry, the legacy resolver and the rewrite table, " +
			"and prints the table sizes. Files missing from dir fall back to the built-in copies.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, dir string) error {
	tables, err := registry.Load(dir)
	if err != nil {
		return err
	}
	reg, err := registry.New(tables)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	resolver, err := legacy.New(reg, tables.Legacy)
	if err != nil {
		return fmt.Errorf("legacy: %w", err)
	}
	router, err := edge.NewRouter(edge.Options{Registry: reg, Legacy: resolver, Rewrites: tables.Rewrites})
	if err != nil {
		return fmt.Errorf("rewrites: %w", err)
	}

	out := cmd.OutOrStdout()
	sizes := reg.Sizes()
	for _, name := range registry.SortedSizeNames(sizes) {
		fmt.Fprintf(out, "%-14s %d\n", name, sizes[name])
	}
	fmt.Fprintf(out, "%-14s %d\n", "legacy", len(tables.Legacy.Mappings))
	fmt.Fprintf(out, "%-14s %d\n", "rewrites", router.RewriteRules())
	fmt.Fprintln(out, "OK")
	return nil
}
