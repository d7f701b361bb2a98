package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ckanindex/pkg/catalog"
	"github.com/matzehuels/ckanindex/pkg/dataset"
	ckerrors "github.com/matzehuels/ckanindex/pkg/errors"
	pkgio "github.com/matzehuels/ckanindex/pkg/io"
)

// Crawl modes.
const (
	modeFull    = "full"
	modeBounded = "bounded"
)

// crawlOpts holds flags for the crawl command.
type crawlOpts struct {
	mode     string
	pageSize int
	workers  int
	output   string
	format   string
	pick     bool
}

// crawlCommand creates the crawl command.
func (c *CLI) crawlCommand() *cobra.Command {
	opts := crawlOpts{mode: modeFull}

	cmd := &cobra.Command{
		Use:   "crawl <organization>",
		Short: "Build the package index of an organization",
		Long: `Build the package → resources index of an organization.

The full mode pages through package_search concurrently and works for any
organization size. The bounded mode uses a single request and refuses
organizations with more than 1000 packages.

Without --output the index is written to stdout.`,
		Example: `  ckanindex crawl cabinet-office -o cabinet-office.json
  ckanindex crawl cabinet-office --mode bounded --format csv
  ckanindex crawl cabnet --pick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("page-size") {
				opts.pageSize = c.Config.PageSize
			}
			if !flags.Changed("workers") {
				opts.workers = c.Config.Workers
			}
			if !flags.Changed("format") {
				opts.format = formatFromPath(opts.output)
			}
			return c.runCrawl(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.mode, "mode", "m", modeFull, "crawl mode: full or bounded")
	flags.IntVar(&opts.pageSize, "page-size", catalog.DefaultPageSize, "packages per request (full mode)")
	flags.IntVarP(&opts.workers, "workers", "w", catalog.DefaultWorkers, "concurrent requests (full mode)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	flags.StringVarP(&opts.format, "format", "f", "json", "output format: json or csv")
	flags.BoolVar(&opts.pick, "pick", false, "choose interactively among suggestions when the name is unknown")

	return cmd
}

// formatFromPath infers the export format from a file extension.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return string(pkgio.FormatCSV)
	}
	return string(pkgio.FormatJSON)
}

func (c *CLI) runCrawl(cmd *cobra.Command, org string, opts crawlOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := pkgio.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.mode != modeFull && opts.mode != modeBounded {
		return fmt.Errorf("unknown mode %q (want %s or %s)", opts.mode, modeFull, modeBounded)
	}
	if opts.pageSize < 1 || opts.workers < 1 {
		return errors.New("--page-size and --workers must be at least 1")
	}

	cat := c.newCatalog()
	name, err := resolve(ctx, "Select organization", org, opts.pick, cat.ResolveOrganization)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Crawling %s...", name))
	spinner.Start()

	var (
		idx    dataset.Index
		failed int
	)
	switch opts.mode {
	case modeBounded:
		b, err := cat.AggregateBounded(ctx, name)
		spinner.Stop()
		if err != nil {
			return err
		}
		if b.TooLarge {
			printWarning("%s has %d packages; the bounded mode handles at most %d", name, b.Count, catalog.BoundedLimit)
			printNextStep("Crawl it in full", fmt.Sprintf("%s crawl %s --mode full", appName, name))
			return ckerrors.New(ckerrors.ErrCodeResultTooLarge, "%s has more than %d packages", name, catalog.BoundedLimit)
		}
		if !b.OK() && b.Count > 0 {
			return fmt.Errorf("organization %s: package search unavailable", name)
		}
		idx = b.Index

	case modeFull:
		var stats catalog.CrawlStats
		idx, stats, err = cat.Crawl(ctx, name, catalog.CrawlOptions{
			PageSize: opts.pageSize,
			Workers:  opts.workers,
			Progress: func(p catalog.Progress) {
				spinner.SetMessage(fmt.Sprintf("Crawling %s: page %d/%d, %d packages", name, p.Completed, p.Total, p.Packages))
			},
		})
		spinner.Stop()
		if err != nil {
			if ctx.Err() != nil {
				printWarning("Crawl interrupted after %d packages", idx.Len())
			}
			return err
		}
		failed = len(stats.FailedPages)
		if failed > 0 {
			logger.Warn("some pages failed and were skipped", "pages", stats.FailedPages)
		}
	}

	prog.done("Crawled "+name, "packages", idx.Len(), "resources", idx.ResourceCount())

	if opts.output == "" {
		return pkgio.Write(idx, format, stdout)
	}
	if err := pkgio.Export(idx, opts.output, format); err != nil {
		return err
	}
	printSuccess("Index of %s", StyleValue.Render(name))
	printIndexStats(idx.Len(), idx.ResourceCount(), failed)
	printFile(opts.output)
	return nil
}
