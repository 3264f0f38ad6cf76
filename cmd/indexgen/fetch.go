package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/logger"
)

type fetchOptions struct {
	url     string
	token   string
	out     string
	timeout time.Duration
}

func newFetchCmd() *cobra.Command {
	opts := fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the device catalog and write search-index.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.url == "" {
				opts.url = os.Getenv("CATALOG_URL")
			}
			if opts.token == "" {
				opts.token = os.Getenv("CATALOG_TOKEN")
			}
			if opts.url == "" {
				return fmt.Errorf("catalog url is required (--url or CATALOG_URL)")
			}
			return runFetch(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "catalog endpoint returning device JSON")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token for the catalog endpoint")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "search-index.yaml", "output file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

func runFetch(cmd *cobra.Command, opts fetchOptions) error {
	client := newCatalogClient(opts.url, opts.token, opts.timeout)
	defer func() { _ = client.Close() }()

	devices, err := client.Devices(cmd.Context())
	if err != nil {
		return err
	}
	entries, err := buildEntries(devices)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	data, err := marshalIndex(entries)
	if err != nil {
		return err
	}

	// write to a sibling temp file so a failed run never truncates the index
	tmp, err := os.CreateTemp(filepath.Dir(opts.out), ".search-index-*.yaml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), opts.out); err != nil {
		return err
	}

	logger.Get().Info().
		Int("catalog_rows", len(devices)).
		Int("entries", len(entries)).
		Str("out", opts.out).
		Msg("Search index written")
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(entries), opts.out)
	return nil
}
