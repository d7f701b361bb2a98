package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ckanindex/pkg/dataset"
	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

const (
	// BoundedLimit is the largest package count fetched in a single request.
	BoundedLimit = 1000

	// DefaultPageSize is the number of packages requested per crawl page.
	DefaultPageSize = 100

	// DefaultWorkers is the number of crawl pages fetched concurrently.
	DefaultWorkers = 4
)

// FilterByOrganization returns the first page of package_search results for
// an organization (the catalog's default page size).
func (c *Catalog) FilterByOrganization(ctx context.Context, org string) (*ckan.SearchResult, bool, error) {
	if err := c.AssertOrganizationExists(ctx, org); err != nil {
		return nil, false, err
	}
	res, ok := c.client.PackageSearch(ctx, ckan.SearchQuery{Organization: org})
	return res, ok, nil
}

// OrganizationInfo returns organization metadata, optionally with the
// (server-limited) list of its packages.
func (c *Catalog) OrganizationInfo(ctx context.Context, org string, includeDatasets bool) (*ckan.Organization, bool, error) {
	if err := c.AssertOrganizationExists(ctx, org); err != nil {
		return nil, false, err
	}
	info, ok := c.client.OrganizationShow(ctx, org, includeDatasets)
	return info, ok, nil
}

// PackageInfo returns a package with its raw resources.
func (c *Catalog) PackageInfo(ctx context.Context, id string) (*ckan.Package, bool, error) {
	if err := c.AssertPackageExists(ctx, id); err != nil {
		return nil, false, err
	}
	pkg, ok := c.client.PackageShow(ctx, id)
	return pkg, ok, nil
}

// PackageResources returns the normalized resources of one package as a
// single-entry index.
func (c *Catalog) PackageResources(ctx context.Context, id string) (dataset.Index, bool, error) {
	pkg, ok, err := c.PackageInfo(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return dataset.Normalize([]ckan.Package{*pkg}), true, nil
}

// Bounded is the outcome of [Catalog.AggregateBounded].
type Bounded struct {
	Index    dataset.Index // nil when absent
	Count    int           // Package count reported by the catalog
	TooLarge bool          // Count exceeded BoundedLimit
}

// OK reports whether an index was produced.
func (b Bounded) OK() bool { return b.Index != nil }

// AggregateBounded builds the index of an organization with one request.
//
// The package count is queried first. Organizations with no packages, or
// with more than [BoundedLimit], yield an absent result; the latter is
// logged as a warning. Use [Catalog.Crawl] for large organizations.
func (c *Catalog) AggregateBounded(ctx context.Context, org string) (Bounded, error) {
	if err := c.AssertOrganizationExists(ctx, org); err != nil {
		return Bounded{}, err
	}
	count, ok := c.client.PackageCount(ctx, org)
	if !ok {
		return Bounded{}, nil
	}
	out := Bounded{Count: count}
	if count > BoundedLimit {
		c.logger.Warn("more than 1000 datasets found; use a full crawl",
			"organization", org, "count", count)
		out.TooLarge = true
		return out, nil
	}
	if count == 0 {
		return out, nil
	}
	res, ok := c.client.PackageSearch(ctx, ckan.SearchQuery{Organization: org, Rows: count})
	if !ok {
		return out, nil
	}
	out.Index = dataset.Normalize(res.Results)
	return out, nil
}

// CrawlOptions configures [Catalog.Crawl].
type CrawlOptions struct {
	PageSize int            // Packages per request (default DefaultPageSize)
	Workers  int            // Concurrent requests (default DefaultWorkers; 1 = sequential)
	Progress func(Progress) // Called after every page, never concurrently
}

// Progress reports crawl advancement. Completed increases by one per call.
type Progress struct {
	Completed int // Pages finished, including failed ones
	Total     int // Pages planned
	Packages  int // Packages merged so far
}

// CrawlStats summarizes a finished crawl.
type CrawlStats struct {
	ID          string        // Correlates the crawl's log lines
	Total       int           // package_count reported by the catalog
	Pages       int           // Pages requested
	FailedPages []int         // Page indexes whose request failed, ascending
	Packages    int           // Packages in the resulting index
	Resources   int           // Resources in the resulting index
	Duration    time.Duration // Wall time of the crawl
}

// Crawl builds the complete index of an organization by requesting every
// page of package_search.
//
// The page count is ceil(total/pageSize) where total comes from
// organization_show. Page i requests start=i*pageSize. Failed pages are
// skipped and listed in CrawlStats.FailedPages. When the same package appears
// on several pages, the page with the higher index wins, so the result does
// not depend on the number of workers.
//
// The only errors are an unknown organization and cancellation of ctx; in
// the latter case the partial index is returned alongside ctx.Err().
func (c *Catalog) Crawl(ctx context.Context, org string, opts CrawlOptions) (dataset.Index, CrawlStats, error) {
	if err := c.AssertOrganizationExists(ctx, org); err != nil {
		return nil, CrawlStats{}, err
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}

	start := time.Now()
	stats := CrawlStats{ID: uuid.NewString()}
	logger := c.logger.With("crawl", stats.ID[:8])
	index := make(dataset.Index)

	info, ok := c.client.OrganizationShow(ctx, org, false)
	if !ok {
		logger.Warn("organization package count unavailable", "organization", org)
		stats.Duration = time.Since(start)
		return index, stats, nil
	}
	stats.Total = info.PackageCount
	stats.Pages = (info.PackageCount + opts.PageSize - 1) / opts.PageSize
	logger.Info("organization package count",
		"organization", org, "packages", stats.Total, "pages", stats.Pages)

	var (
		mu        sync.Mutex
		owner     = make(map[string]int)
		completed int
	)
	merge := func(page int, idx dataset.Index, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if ok {
			for name, rs := range idx {
				if prev, seen := owner[name]; seen && prev > page {
					continue
				}
				owner[name] = page
				index[name] = rs
			}
		} else {
			stats.FailedPages = append(stats.FailedPages, page)
		}
		completed++
		logger.Info("fetched page", "page", page, "completed", completed, "packages", len(index))
		if opts.Progress != nil {
			opts.Progress(Progress{Completed: completed, Total: stats.Pages, Packages: len(index)})
		}
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for page := range stats.Pages {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, ok := c.client.PackageSearch(ctx, ckan.SearchQuery{
				Organization: org,
				Start:        page * opts.PageSize,
				Rows:         opts.PageSize,
			})
			var idx dataset.Index
			if ok {
				idx = dataset.Normalize(res.Results)
				observability.Catalog().OnPage(ctx, org, page, len(res.Results), nil)
			} else {
				logger.Debug("page request failed; skipping", "page", page)
				observability.Catalog().OnPage(ctx, org, page, 0, errPageFailed)
			}
			merge(page, idx, ok)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(stats.FailedPages)
	stats.Packages = index.Len()
	stats.Resources = index.ResourceCount()
	stats.Duration = time.Since(start)
	logger.Info("crawl complete", "packages", stats.Packages, "datasets", stats.Resources,
		"failed_pages", len(stats.FailedPages), "duration", stats.Duration)

	if err := ctx.Err(); err != nil {
		return index, stats, err
	}
	return index, stats, nil
}
