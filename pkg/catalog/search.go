package catalog

import (
	"context"
	"strings"

	"github.com/matzehuels/ckanindex/pkg/errors"
	"github.com/matzehuels/ckanindex/pkg/fuzzy"
)

// SearchOrganizations returns the organization names that approximately
// match query, in listing order.
func (c *Catalog) SearchOrganizations(ctx context.Context, query string) ([]string, error) {
	res, ok := c.searchListing(ctx, c.orgs.Get, query)
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeOrganizationNotFound, errListingUnavailable,
			"No matching organizations could be found")
	}
	if !res.Found() {
		return nil, errors.OrganizationNotFound("No matching organizations could be found")
	}
	c.logger.Debug("fuzzy organization search", "query", query, "stage", res.Stage(), "matches", len(res.Matches()))
	return res.Matches(), nil
}

// SearchPackages returns the package IDs that approximately match query, in
// listing order.
func (c *Catalog) SearchPackages(ctx context.Context, query string) ([]string, error) {
	res, ok := c.searchListing(ctx, c.pkgs.Get, query)
	if !ok {
		return nil, errors.Wrap(errors.ErrCodePackageNotFound, errListingUnavailable,
			"No matching packages could be found")
	}
	if !res.Found() {
		return nil, errors.PackageNotFound("No matching packages could be found")
	}
	c.logger.Debug("fuzzy package search", "query", query, "stage", res.Stage(), "matches", len(res.Matches()))
	return res.Matches(), nil
}

func (c *Catalog) searchListing(ctx context.Context, get func(context.Context) (*listing, bool), query string) (fuzzy.Result, bool) {
	l, ok := get(ctx)
	if !ok {
		return fuzzy.NoMatch, false
	}
	return c.engine.Search(l.names, query), true
}

// ResolveOrganization returns name if it is a known organization. Otherwise
// it returns an organization-not-found error carrying the fuzzy matches for
// name as suggestions (see [errors.Suggestions]).
func (c *Catalog) ResolveOrganization(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	err := c.AssertOrganizationExists(ctx, name)
	if err == nil {
		return name, nil
	}
	nf, ok := errors.As(err)
	if !ok || nf.Cause != nil {
		return "", err
	}
	if matches, serr := c.SearchOrganizations(ctx, name); serr == nil {
		return "", nf.WithSuggestions(matches)
	}
	return "", err
}

// ResolvePackage is the package counterpart of [Catalog.ResolveOrganization].
func (c *Catalog) ResolvePackage(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	err := c.AssertPackageExists(ctx, id)
	if err == nil {
		return id, nil
	}
	nf, ok := errors.As(err)
	if !ok || nf.Cause != nil {
		return "", err
	}
	if matches, serr := c.SearchPackages(ctx, id); serr == nil {
		return "", nf.WithSuggestions(matches)
	}
	return "", err
}
