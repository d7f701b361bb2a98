package dataset

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
)

// Index maps a package name to its resources, newest first.
type Index map[string][]Resource

// Normalize converts raw catalog packages into an [Index] keyed by package
// name. Later packages with the same name replace earlier ones.
func Normalize(pkgs []ckan.Package) Index {
	idx := make(Index, len(pkgs))
	for _, p := range pkgs {
		idx[p.Name] = NormalizePackage(p)
	}
	return idx
}

// NormalizePackage maps the resources of one package and sorts them by
// creation time, newest first.
func NormalizePackage(p ckan.Package) []Resource {
	out := make([]Resource, 0, len(p.Resources))
	for _, r := range p.Resources {
		out = append(out, FromRaw(r))
	}
	SortByCreated(out)
	return out
}

// FromRaw maps a raw catalog resource field by field.
func FromRaw(r ckan.Resource) Resource {
	return Resource{
		Description:  string(r.Description),
		FileFormat:   string(r.Format),
		FileID:       string(r.ID),
		MimeType:     string(r.Mimetype),
		Name:         string(r.Name),
		PackageID:    string(r.PackageID),
		ResourceType: string(r.ResourceType),
		CreatedAt:    NewTimestamp(r.Created),
		FileURL:      string(r.URL),
	}
}

// SortByCreated sorts resources by CreatedAt descending, in place and stably.
//
// Timestamps are only comparable when every value is a JSON string (compared
// lexically, which orders ISO-8601 correctly) or every value is a JSON number.
// Any other mix leaves the slice untouched. It reports whether a sort
// happened.
func SortByCreated(rs []Resource) bool {
	if len(rs) < 2 {
		return true
	}
	if keys, ok := stringKeys(rs); ok {
		sortDesc(rs, keys)
		return true
	}
	if keys, ok := numberKeys(rs); ok {
		sortDesc(rs, keys)
		return true
	}
	return false
}

func stringKeys(rs []Resource) ([]string, bool) {
	keys := make([]string, len(rs))
	for i, r := range rs {
		s, ok := r.CreatedAt.Value()
		if !ok {
			return nil, false
		}
		keys[i] = s
	}
	return keys, true
}

func numberKeys(rs []Resource) ([]float64, bool) {
	keys := make([]float64, len(rs))
	for i, r := range rs {
		f, ok := r.CreatedAt.Number()
		if !ok {
			return nil, false
		}
		keys[i] = f
	}
	return keys, true
}

// sortDesc reorders rs by keys, descending and stable.
func sortDesc[K cmp.Ordered](rs []Resource, keys []K) {
	order := make([]int, len(rs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(keys[b], keys[a])
	})
	sorted := make([]Resource, len(rs))
	for i, j := range order {
		sorted[i] = rs[j]
	}
	copy(rs, sorted)
}

// Merge copies every entry of other into idx, overwriting existing keys.
func (idx Index) Merge(other Index) {
	maps.Copy(idx, other)
}

// Len returns the number of packages.
func (idx Index) Len() int { return len(idx) }

// ResourceCount returns the total number of resources across all packages.
func (idx Index) ResourceCount() int {
	n := 0
	for _, rs := range idx {
		n += len(rs)
	}
	return n
}

// Keys returns the package names in sorted order.
func (idx Index) Keys() []string {
	return slices.Sorted(maps.Keys(idx))
}
