package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lightbox/internal/api"
	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/logging"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and maintain the media store index",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogScanCommand(ctx))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx))
	catalogCmd.AddCommand(newCatalogImportCommand(ctx))

	return catalogCmd
}

// localLibrary builds a scanned in-process catalog for use when the daemon
// is offline.
func localLibrary(ctx *commandContext, cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	library := catalog.New(cfg, logging.NewNop())
	if _, err := library.Scan(cmd.Context()); err != nil {
		return nil, err
	}
	return library, nil
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var cursorFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed media assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeFlag != "" {
				if _, err := catalog.ParseMediaType(typeFlag); err != nil {
					return err
				}
			}

			var page api.CatalogListResponse
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.CatalogList(typeFlag, cursorFlag, limitFlag)
				if err != nil {
					return err
				}
				page = api.CatalogListResponse{
					Assets:     resp.Assets,
					NextCursor: resp.NextCursor,
					HasMore:    resp.HasMore,
				}
			} else {
				library, err := localLibrary(ctx, cmd)
				if err != nil {
					return err
				}
				mediaType, _ := catalog.ParseMediaType(typeFlag)
				page = api.FromCatalogPage(library.List(mediaType, cursorFlag, limitFlag))
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, page)
			}
			out := cmd.OutOrStdout()
			if len(page.Assets) == 0 {
				fmt.Fprintln(out, "No assets indexed")
				return nil
			}
			table := renderTable(
				[]string{"ID", "Title", "Type", "Dimensions", "Duration", "Size", "Modified"},
				buildAssetRows(page.Assets),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(out, table)
			if page.HasMore {
				fmt.Fprintf(out, "More assets available; continue with --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Filter by media type (image or video)")
	cmd.Flags().StringVar(&cursorFlag, "cursor", "", "Resume listing from a pagination cursor")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum assets per page")
	return cmd
}

func newCatalogScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Rescan the media store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary api.ScanSummary
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.CatalogScan()
				if err != nil {
					return err
				}
				summary = api.ScanSummary{
					Images:     resp.Images,
					Videos:     resp.Videos,
					Skipped:    resp.Skipped,
					TookMillis: resp.TookMillis,
				}
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				library := catalog.New(cfg, logging.NewNop())
				result, err := library.Scan(cmd.Context())
				if err != nil {
					return err
				}
				summary = api.FromScanSummary(result)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d images and %d videos (%d skipped) in %dms\n",
				summary.Images, summary.Videos, summary.Skipped, summary.TookMillis)
			return nil
		},
	}
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show media store index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats api.CatalogStats
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.CatalogStats()
				if err != nil {
					return err
				}
				stats = api.CatalogStats{
					Images:   resp.Images,
					Videos:   resp.Videos,
					LastScan: resp.LastScan,
				}
			} else {
				library, err := localLibrary(ctx, cmd)
				if err != nil {
					return err
				}
				stats = api.FromCatalogStats(library.Stats())
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Images: %d\nVideos: %d\n", stats.Images, stats.Videos)
			if stats.LastScan != "" {
				fmt.Fprintf(out, "Last scan: %s\n", formatDisplayTime(stats.LastScan))
			} else {
				fmt.Fprintln(out, "Last scan: never")
			}
			return nil
		},
	}
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Copy a file into the media store and index it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			var asset api.CatalogAsset
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.CatalogImport(source)
				if err != nil {
					return err
				}
				asset = resp.Asset
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				library := catalog.New(cfg, logging.NewNop())
				imported, err := library.Import(cmd.Context(), source)
				if err != nil {
					return err
				}
				asset = api.FromAsset(imported)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, asset)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s, %dx%d)\n", asset.Title, asset.MediaType, asset.Width, asset.Height)
			return nil
		},
	}
}
