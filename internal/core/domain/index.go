package domain

import (
	"slices"
	"sort"
	"strings"
)

// IndexEntry is one (name, version, platform) triple known to an index.
type IndexEntry = PackageID

// PackageIndex is a queryable set of package identities grouped by name.
// Entries are deduplicated on insertion and sorted only when queried.
type PackageIndex struct {
	entries map[string]map[string]IndexEntry
}

// NewPackageIndex creates an empty index.
func NewPackageIndex() *PackageIndex {
	return &PackageIndex{entries: make(map[string]map[string]IndexEntry)}
}

// Add inserts an identity. Adding a known identity is a no-op.
func (idx *PackageIndex) Add(entry IndexEntry) {
	if entry.Platform == "" {
		entry.Platform = PlatformAny
	}
	set, ok := idx.entries[entry.Name]
	if !ok {
		set = make(map[string]IndexEntry)
		idx.entries[entry.Name] = set
	}
	set[entry.Key()] = entry
}

// Len returns the number of identities in the index.
func (idx *PackageIndex) Len() int {
	n := 0
	for _, set := range idx.entries {
		n += len(set)
	}
	return n
}

// Query returns every identity recorded under name, highest version first.
// Ties are ordered by platform name.
func (idx *PackageIndex) Query(name string) []IndexEntry {
	set := idx.entries[name]
	out := make([]IndexEntry, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Version.Compare(out[j].Version); cmp != 0 {
			return cmp > 0
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// Merge returns a new index holding the union of idx and other.
func (idx *PackageIndex) Merge(other *PackageIndex) *PackageIndex {
	merged := NewPackageIndex()
	for _, src := range []*PackageIndex{idx, other} {
		if src == nil {
			continue
		}
		for _, set := range src.entries {
			for _, e := range set {
				merged.Add(e)
			}
		}
	}
	return merged
}

// Names returns the sorted package names present in the index.
func (idx *PackageIndex) Names() []string {
	names := make([]string, 0, len(idx.entries))
	for name, set := range idx.entries {
		if len(set) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// AllNames maps each package name to its versions, highest first, deduplicated across platforms.
// A non-empty filter restricts the result to the named packages.
// It fails with ErrEmptyResult when nothing remains.
func (idx *PackageIndex) AllNames(filter []string) (map[string][]Version, error) {
	wanted := make(map[string]struct{}, len(filter))
	for _, name := range filter {
		wanted[name] = struct{}{}
	}

	result := make(map[string][]Version)
	for _, name := range idx.Names() {
		if _, ok := wanted[name]; len(wanted) > 0 && !ok {
			continue
		}
		var versions []Version
		for _, e := range idx.Query(name) {
			if n := len(versions); n > 0 && versions[n-1].EQ(e.Version) {
				continue
			}
			versions = append(versions, e.Version)
		}
		result[name] = versions
	}

	if len(result) == 0 {
		if len(filter) == 0 {
			return nil, Fail(ErrEmptyResult, "index is empty")
		}
		return nil, Fail(ErrEmptyResult, "nothing matches the filter", "filter", strings.Join(filter, ","))
	}
	return result, nil
}
