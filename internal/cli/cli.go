// Package cli implements the ckanindex command-line interface.
//
// The commands browse a CKAN catalog (organizations, packages, resources),
// aggregate an organization's packages into an index and export it, and
// serve the same operations over HTTP. The CLI is built using cobra, logs
// through charmbracelet/log and renders human output with lipgloss.
//
// # Commands
//
//   - orgs: list, search and show organizations
//   - packages: list, search and show packages and their resources
//   - crawl: build the package index of an organization (bounded or full)
//   - inspect: summarize an exported index
//   - serve: run the HTTP API
//   - config: print or initialize the configuration file
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/ckanindex/config.toml (or --config),
// then CKANINDEX_BASE_URL, then command-line flags.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ckanindex/pkg/buildinfo"
	"github.com/matzehuels/ckanindex/pkg/catalog"
	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "ckanindex"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	baseURL    string
	timeout    time.Duration
	attempts   int
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ckanindex aggregates CKAN open-data catalogs into package indexes",
		Long: `ckanindex is a client for CKAN open-data catalogs such as data.gov.uk.

It resolves organization and package names (with fuzzy suggestions for
near-misses), crawls every package of an organization and exports the
resulting package → resource index as JSON or CSV.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ckanindex/config.toml)")
	flags.StringVar(&c.baseURL, "base-url", "", "CKAN action API base URL")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout")
	flags.IntVar(&c.attempts, "attempts", 0, "tries per request for transient failures")

	root.AddCommand(c.orgsCommand())
	root.AddCommand(c.packagesCommand())
	root.AddCommand(c.crawlCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the effective configuration: defaults, config file,
// environment, then flags that were set explicitly.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return c.applyFlags(cmd)
		}
		path = p
	}

	cfg, unknown, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	for _, k := range unknown {
		c.Logger.Warn("unknown config key", "key", k, "file", path)
	}
	c.Config = cfg
	return c.applyFlags(cmd)
}

func (c *CLI) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		c.Config.BaseURL = c.baseURL
	}
	if flags.Changed("timeout") {
		c.Config.Timeout.Duration = c.timeout
	}
	if flags.Changed("attempts") {
		c.Config.Attempts = c.attempts
	}
	if err := c.Config.validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// =============================================================================
// Catalog Factory
// =============================================================================

// newCatalog creates a catalog for CLI use from the effective config.
func (c *CLI) newCatalog() *catalog.Catalog {
	client := ckan.NewClient(ckan.Options{
		BaseURL:   c.Config.BaseURL,
		Timeout:   c.Config.Timeout.Duration,
		Attempts:  c.Config.Attempts,
		UserAgent: c.Config.UserAgent,
		Logger:    c.Logger,
	})
	c.Logger.Debug("using catalog", "base_url", client.BaseURL())
	return catalog.New(client, catalog.Options{Logger: c.Logger})
}
