// Package integrations provides the shared HTTP layer for catalog API clients.
//
// # Overview
//
// [Client] wraps net/http with the concerns every catalog client needs:
//
//   - A per-request timeout (default [DefaultTimeout])
//   - Default headers such as User-Agent
//   - Classification of HTTP statuses into [ErrNotFound] and [ErrNetwork]
//   - Optional retry of transient failures via [httputil.Retry]
//   - HTTP events reported to [observability.HTTP]
//
// The CKAN action API lives in the [ckan] subpackage:
//
//	client := ckan.NewClient(ckan.Options{BaseURL: ckan.DefaultBaseURL})
//	names, ok := client.OrganizationList(ctx)
//
// [ckan]: github.com/matzehuels/ckanindex/pkg/integrations/ckan
// [httputil.Retry]: github.com/matzehuels/ckanindex/pkg/httputil.Retry
// [observability.HTTP]: github.com/matzehuels/ckanindex/pkg/observability.HTTP
package integrations
