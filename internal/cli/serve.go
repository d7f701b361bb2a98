package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ckanindex/internal/server"
	"github.com/matzehuels/ckanindex/pkg/catalog"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog operations over HTTP",
		Long: `Serve organization and package lookups, fuzzy search and index
aggregation as a JSON API. Listings are fetched once and shared by all
requests for the lifetime of the process. Prometheus metrics are served
at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = c.Config.Listen
			}
			metrics := observability.NewMetrics()
			observability.SetCatalogHooks(metrics)
			observability.SetHTTPHooks(metrics)

			srv := server.New(c.newCatalog(), server.Options{
				Logger:  c.Logger,
				Metrics: metrics,
				Crawl: catalog.CrawlOptions{
					PageSize: c.Config.PageSize,
					Workers:  c.Config.Workers,
				},
			})
			return srv.ListenAndServe(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default from config, 127.0.0.1:8080)")
	return cmd
}
