// Command indexgen builds and checks the routing data files at build time.
//
//	indexgen fetch --url https://catalog.internal/devices --out data/search-index.yaml
//	indexgen validate data/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/logger"
	"storefront/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "indexgen",
		Short:         "Generate and validate storefront routing tables",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(newFetchCmd(), newValidateCmd())
	return root
}
