// Package httputil provides HTTP utilities for the catalog client.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures
// (network errors and 5xx responses wrapped in [RetryableError]):
//
//	err := httputil.Retry(ctx, 3, httputil.DefaultBackoff, func() error {
//	    return doRequest(ctx)
//	})
//
// The catalog treats a failed request as an absent result, so the default
// configuration performs a single attempt. Raising the attempt count only
// changes how hard the transport tries before giving up; it never turns a
// failure into an error visible to catalog callers.
package httputil
