package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	ckerrors "github.com/matzehuels/ckanindex/pkg/errors"
)

// errListingUnavailable is reported when a catalog listing could not be fetched.
var errListingUnavailable = errors.New("catalog listing unavailable; check --base-url and network access")

// orgsCommand creates the orgs command group.
func (c *CLI) orgsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"organizations"},
		Short:   "List, search and show organizations",
	}
	cmd.AddCommand(c.orgsListCommand())
	cmd.AddCommand(c.orgsSearchCommand())
	cmd.AddCommand(c.orgsShowCommand())
	return cmd
}

func (c *CLI) orgsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every organization in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orgs, ok := c.newCatalog().Organizations(cmd.Context())
			if !ok {
				return errListingUnavailable
			}
			for _, o := range orgs {
				printLine(o)
			}
			return nil
		},
	}
}

func (c *CLI) orgsSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find organizations with names similar to query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ckerrors.ValidateIdentifier("query", args[0]); err != nil {
				return err
			}
			matches, err := c.newCatalog().SearchOrganizations(cmd.Context(), args[0])
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

func (c *CLI) orgsShowCommand() *cobra.Command {
	var (
		datasets bool
		pick     bool
	)
	cmd := &cobra.Command{
		Use:   "show <organization>",
		Short: "Show organization details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat := c.newCatalog()
			name, err := resolve(ctx, "Select organization", args[0], pick, cat.ResolveOrganization)
			if err != nil {
				return err
			}
			info, ok, err := cat.OrganizationInfo(ctx, name, datasets)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("organization %s: details unavailable", name)
			}

			fmt.Fprintln(stdout, StyleTitle.Render(info.Title))
			printKeyValue("Name", info.Name)
			printKeyValue("ID", info.ID)
			printKeyValue("Packages", strconv.Itoa(info.PackageCount))
			if info.Created != "" {
				printKeyValue("Created", info.Created)
			}
			if info.Description != "" {
				printDetail("%s", info.Description)
			}
			for _, p := range info.Packages {
				printDetail("%s", p.Name)
			}
			fmt.Fprintln(stdout)
			printNextStep("Build its index", fmt.Sprintf("%s crawl %s", appName, info.Name))
			return nil
		},
	}
	cmd.Flags().BoolVar(&datasets, "datasets", false, "include the organization's packages")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose interactively among suggestions when the name is unknown")
	return cmd
}

// resolve maps name to a catalog entry. Unknown names print the fuzzy
// suggestions, or open the picker when pick is set and a terminal is attached.
func resolve(ctx context.Context, title, name string, pick bool, lookup func(context.Context, string) (string, error)) (string, error) {
	resolved, err := lookup(ctx, name)
	if err == nil {
		return resolved, nil
	}
	suggestions := ckerrors.Suggestions(err)
	if pick && len(suggestions) > 0 && interactive() {
		return pickMatch(title, name, suggestions)
	}
	printSuggestions(suggestions)
	return "", err
}
