// Package catalog aggregates a CKAN catalog into package indexes.
//
// A [Catalog] wraps a [ckan.Client] with three pieces of state-light logic:
//
//   - lazily cached listings of all organization and package names
//     ([Catalog.Organizations], [Catalog.Packages]),
//   - existence checks and fuzzy name resolution on top of those listings,
//   - aggregation of an organization's packages into a [dataset.Index], either
//     with a single bounded request ([Catalog.AggregateBounded]) or by
//     crawling every page concurrently ([Catalog.Crawl]).
//
// Upstream failures never surface as errors. Operations that depend on the
// catalog answer report an absent result instead; only unknown names produce
// errors ([errors.ErrCodeOrganizationNotFound], [errors.ErrCodePackageNotFound]).
//
// A Catalog is safe for concurrent use. Listings are fetched at most once per
// Catalog and never invalidated; create a new Catalog to observe catalog
// changes.
package catalog

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ckanindex/pkg/cache"
	"github.com/matzehuels/ckanindex/pkg/fuzzy"
	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

// Catalog is the aggregation layer over a CKAN client.
type Catalog struct {
	client *ckan.Client
	logger *log.Logger
	engine fuzzy.Engine

	orgs *cache.Lazy[*listing]
	pkgs *cache.Lazy[*listing]
}

// Options configures a [Catalog].
type Options struct {
	Logger    *log.Logger // Defaults to log.Default()
	Threshold float64     // Fuzzy similarity threshold (default fuzzy.DefaultThreshold)
}

// New creates a Catalog backed by client. Nothing is fetched until a listing
// is first needed.
func New(client *ckan.Client, opts Options) *Catalog {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	c := &Catalog{
		client: client,
		logger: opts.Logger,
		engine: fuzzy.Engine{Threshold: opts.Threshold},
	}
	c.orgs = cache.NewLazy(c.fill("organizations", client.OrganizationList))
	c.pkgs = cache.NewLazy(c.fill("packages", client.PackageList))
	return c
}

// Client returns the underlying endpoint client.
func (c *Catalog) Client() *ckan.Client { return c.client }

// Organizations returns the names of all organizations, fetching them on
// first use. It reports false when the listing could not be obtained.
func (c *Catalog) Organizations(ctx context.Context) ([]string, bool) {
	l, ok := c.orgs.Get(ctx)
	if !ok {
		return nil, false
	}
	return slices.Clone(l.names), true
}

// Packages returns the IDs of all packages, fetching them on first use.
// It reports false when the listing could not be obtained.
func (c *Catalog) Packages(ctx context.Context) ([]string, bool) {
	l, ok := c.pkgs.Get(ctx)
	if !ok {
		return nil, false
	}
	return slices.Clone(l.names), true
}

// listing is an immutable name list with a membership index.
type listing struct {
	names []string
	set   map[string]struct{}
}

func newListing(names []string) *listing {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &listing{names: names, set: set}
}

func (l *listing) has(name string) bool {
	_, ok := l.set[name]
	return ok
}

// fill adapts a list endpoint to a cache fetch. Empty listings are not cached.
func (c *Catalog) fill(kind string, list func(context.Context) ([]string, bool)) cache.Fetch[*listing] {
	return func(ctx context.Context) (*listing, bool) {
		names, ok := list(ctx)
		if !ok || len(names) == 0 {
			c.logger.Debug("catalog listing unavailable", "listing", kind)
			return nil, false
		}
		c.logger.Debug("cached catalog listing", "listing", kind, "size", len(names))
		observability.Catalog().OnCacheFill(ctx, kind, len(names))
		return newListing(names), true
	}
}
