package pkggraph

import (
	"slices"
)

// Metadata carries the per-package side-channel lookups consumed during
// assembly. The maps are keyed by package name; a name missing from a map
// takes the documented default. Replaces the flat per-concern caches of
// the data-collection driver with one value object resolved per package.
type Metadata struct {
	Versions     map[string]string // name → version
	Explicit     map[string]bool   // name → explicitly installed
	Foreign      map[string]bool   // name → foreign origin (not from a sync repo)
	Repositories map[string]string // name → origin repository
	URLs         map[string]string // name → upstream URL
}

// resolve returns the metadata for one package, applying defaults for
// names absent from the individual maps.
func (m Metadata) resolve(name string) (version, repo, url string, explicit, foreign bool) {
	version = VersionUnknown
	if v, ok := m.Versions[name]; ok && v != "" {
		version = v
	}
	repo = RepoUnknown
	if r, ok := m.Repositories[name]; ok && r != "" {
		repo = r
	}
	url = m.URLs[name]
	explicit = m.Explicit[name]
	foreign = m.Foreign[name]
	return
}

// EdgeSets holds the four per-package edge sets produced by collection.
type EdgeSets struct {
	DependsOn          []string
	RequiredBy         []string
	OptionalDependsOn  []string
	OptionalRequiredBy []string
}

// Assemble merges the per-package edge sets and metadata into a frozen
// Graph containing one record per name in names.
//
// A name with no entry in edges (a package whose collection failed) gets
// empty edge sets. LocallyBuilt is derived, not stored upstream: true iff
// the package is foreign-origin but its repository lookup still resolved
// to a known repo, i.e. a locally rebuilt official package.
func Assemble(names []string, edges map[string]EdgeSets, meta Metadata) *Graph {
	records := make(map[string]*PackageRecord, len(names))

	for _, name := range names {
		version, repo, url, explicit, foreign := meta.resolve(name)
		es := edges[name]

		records[name] = &PackageRecord{
			Name:               name,
			Version:            version,
			Explicit:           explicit,
			Repository:         repo,
			LocallyBuilt:       foreign && repo != RepoAUR,
			URL:                url,
			DependsOn:          slices.Clone(es.DependsOn),
			RequiredBy:         slices.Clone(es.RequiredBy),
			OptionalDependsOn:  slices.Clone(es.OptionalDependsOn),
			OptionalRequiredBy: slices.Clone(es.OptionalRequiredBy),
		}
	}

	return &Graph{records: records}
}
