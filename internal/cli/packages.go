package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	ckerrors "github.com/matzehuels/ckanindex/pkg/errors"
	pkgio "github.com/matzehuels/ckanindex/pkg/io"
)

// packagesCommand creates the packages command group.
func (c *CLI) packagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packages",
		Aliases: []string{"pkgs"},
		Short:   "List, search and show packages",
	}
	cmd.AddCommand(c.packagesListCommand())
	cmd.AddCommand(c.packagesSearchCommand())
	cmd.AddCommand(c.packagesShowCommand())
	cmd.AddCommand(c.packagesResourcesCommand())
	return cmd
}

func (c *CLI) packagesListCommand() *cobra.Command {
	var org string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages (all, or the first page of one organization)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat := c.newCatalog()
			if org == "" {
				pkgs, ok := cat.Packages(ctx)
				if !ok {
					return errListingUnavailable
				}
				for _, p := range pkgs {
					printLine(p)
				}
				return nil
			}

			name, err := resolve(ctx, "Select organization", org, false, cat.ResolveOrganization)
			if err != nil {
				return err
			}
			res, ok, err := cat.FilterByOrganization(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("organization %s: package search unavailable", name)
			}
			for _, p := range res.Results {
				printLine(p.Name)
			}
			if res.Count > len(res.Results) {
				printDetail("showing %d of %d; use `%s crawl %s` for all", len(res.Results), res.Count, appName, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "only packages of this organization")
	return cmd
}

func (c *CLI) packagesSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find packages with IDs similar to query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ckerrors.ValidateIdentifier("query", args[0]); err != nil {
				return err
			}
			matches, err := c.newCatalog().SearchPackages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, m := range matches {
				printLine(m)
			}
			return nil
		},
	}
}

func (c *CLI) packagesShowCommand() *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "show <package>",
		Short: "Show package details and its resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat := c.newCatalog()
			id, err := resolve(ctx, "Select package", args[0], pick, cat.ResolvePackage)
			if err != nil {
				return err
			}
			p, ok, err := cat.PackageInfo(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("package %s: details unavailable", id)
			}

			fmt.Fprintln(stdout, StyleTitle.Render(p.Title))
			printKeyValue("Name", p.Name)
			printKeyValue("ID", p.ID)
			if p.Organization != nil {
				printKeyValue("Organization", p.Organization.Name)
			}
			if p.MetadataModified != "" {
				printKeyValue("Modified", p.MetadataModified)
			}
			printKeyValue("Resources", strconv.Itoa(len(p.Resources)))
			for _, r := range p.Resources {
				printDetail("%s  %s  %s", r.ID, r.Format, r.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "choose interactively among suggestions when the ID is unknown")
	return cmd
}

func (c *CLI) packagesResourcesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resources <package>",
		Short: "Print the normalized resources of a package",
		Long: `Print the resources of a package as a single-entry index, newest first
when the creation timestamps allow ordering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pkgio.ParseFormat(format)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cat := c.newCatalog()
			id, err := resolve(ctx, "Select package", args[0], false, cat.ResolvePackage)
			if err != nil {
				return err
			}
			idx, ok, err := cat.PackageResources(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("package %s: details unavailable", id)
			}
			return pkgio.Write(idx, f, stdout)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or csv")
	return cmd
}
