// Package pkg provides the core libraries of ckanindex, a client and
// aggregation layer for CKAN open-data catalogs such as data.gov.uk.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [integrations] - HTTP transport and the CKAN action API client
//  2. [catalog] - Cached listings, existence checks, fuzzy search and aggregation
//  3. [fuzzy] - Two-stage name matching (Snowball stems, then edit distance)
//  4. [dataset] - The normalized package → resources index
//  5. [io] - JSON and CSV export and JSON import of indexes
//  6. [cache], [errors], [httputil], [observability], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	CKAN action API (organization_list, package_search, ...)
//	         ↓
//	    [integrations/ckan] (envelope decoding, absent-on-failure)
//	         ↓
//	    [catalog] (lazy listings, validation, bounded or paged crawl)
//	         ↓
//	    [dataset] (resource normalization, newest first)
//	         ↓
//	    [io] (JSON / CSV)
//
// # Quick Start
//
//	client := ckan.NewClient(ckan.Options{BaseURL: ckan.DefaultBaseURL})
//	cat := catalog.New(client, catalog.Options{})
//
//	idx, stats, err := cat.Crawl(ctx, "cabinet-office", catalog.CrawlOptions{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(stats.Packages, "packages")
//	return io.Export(idx, "cabinet-office.json", io.FormatJSON)
//
// [integrations]: github.com/matzehuels/ckanindex/pkg/integrations
// [integrations/ckan]: github.com/matzehuels/ckanindex/pkg/integrations/ckan
// [catalog]: github.com/matzehuels/ckanindex/pkg/catalog
// [fuzzy]: github.com/matzehuels/ckanindex/pkg/fuzzy
// [dataset]: github.com/matzehuels/ckanindex/pkg/dataset
// [io]: github.com/matzehuels/ckanindex/pkg/io
// [cache]: github.com/matzehuels/ckanindex/pkg/cache
// [errors]: github.com/matzehuels/ckanindex/pkg/errors
// [httputil]: github.com/matzehuels/ckanindex/pkg/httputil
// [observability]: github.com/matzehuels/ckanindex/pkg/observability
// [buildinfo]: github.com/matzehuels/ckanindex/pkg/buildinfo
package pkg
