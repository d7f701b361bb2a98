package catalog

import (
	"context"
	"strings"

	"github.com/matzehuels/ckanindex/pkg/errors"
)

// errListingUnavailable is the cause attached to not-found errors when the
// listing itself could not be fetched.
var errListingUnavailable = errors.New(errors.ErrCodeUpstream, "catalog listing unavailable")

// errPageFailed is reported to hooks for crawl pages that returned nothing.
var errPageFailed = errors.New(errors.ErrCodeUpstream, "page request failed")

// AssertOrganizationExists returns nil if name is a known organization.
//
// Names are compared exactly after trimming surrounding whitespace. When the
// organization listing cannot be fetched nothing can be shown to exist, so
// the not-found error is returned with errListingUnavailable as its cause.
func (c *Catalog) AssertOrganizationExists(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	l, ok := c.orgs.Get(ctx)
	if !ok {
		return errors.Wrap(errors.ErrCodeOrganizationNotFound, errListingUnavailable,
			"No organization named '%s' was found", name)
	}
	if !l.has(name) {
		return errors.OrganizationNotFound("No organization named '%s' was found", name)
	}
	return nil
}

// AssertPackageExists returns nil if id is a known package. The comparison
// rules match [Catalog.AssertOrganizationExists].
func (c *Catalog) AssertPackageExists(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	l, ok := c.pkgs.Get(ctx)
	if !ok {
		return errors.Wrap(errors.ErrCodePackageNotFound, errListingUnavailable,
			"No package with ID '%s' was found", id)
	}
	if !l.has(id) {
		return errors.PackageNotFound("No package with ID '%s' was found", id)
	}
	return nil
}
