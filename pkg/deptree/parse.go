// Package deptree parses the tree-formatted dependency listings produced
// by pactree into flat, classified name sets.
//
// pactree output interleaves mandatory and optional entries and decorates
// lines with box-drawing glyphs, version constraints, provider annotations
// and markers:
//
//	linux
//	├─coreutils
//	│ ├─glibc>=2.38
//	│ └─openssl (optional)
//	└─kmod: module handling
//	  └─libarchive.so (optional) [unresolvable]
//
// Parse reduces this to two deduplicated, name-sorted sets: mandatory and
// optional package names. Unresolvable optional entries keep a trailing
// "*" so broken optional dependencies stay visible downstream.
package deptree

import (
	"slices"
	"strings"
)

// Markers emitted by pactree for optional and missing entries.
const (
	optionalMarker     = "(optional)"
	unresolvableMarker = "[unresolvable]"

	// UnresolvableSuffix is appended to optional entries whose target
	// could not be resolved to an installed package or provider.
	UnresolvableSuffix = "*"
)

// treeGlyphs are the leading decoration characters pactree draws in both
// unicode and ASCII mode, plus indentation whitespace.
const treeGlyphs = "│├└─|`- \t"

// Record holds the classified dependency listing for one package in one
// traversal direction (forward or reverse).
type Record struct {
	Mandatory []string // hard dependency names, sorted
	Optional  []string // optional dependency names, sorted, "*"-suffixed if unresolvable
}

// entry is one classified line of pactree output.
type entry struct {
	name         string
	optional     bool
	unresolvable bool
}

// classifyLine reduces one raw pactree line to a package name plus its
// markers. It strips tree decoration, the optional/unresolvable markers,
// version-constraint suffixes and trailing provider or description text.
// The second return value is false for blank or decoration-only lines.
func classifyLine(line string) (entry, bool) {
	var e entry

	s := strings.TrimLeft(line, treeGlyphs)
	s = strings.TrimSpace(s)
	if s == "" {
		return e, false
	}

	if strings.Contains(s, optionalMarker) {
		e.optional = true
		s = strings.ReplaceAll(s, optionalMarker, "")
	}
	if strings.Contains(s, unresolvableMarker) {
		e.unresolvable = true
		s = strings.ReplaceAll(s, unresolvableMarker, "")
	}
	s = strings.TrimSpace(s)

	// Provider annotations and descriptions follow the first whitespace
	// or colon ("kmod: module handling", "libfoo.so provides foo").
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}

	// Version constraints are not part of the name ("glibc>=2.38").
	if i := strings.IndexAny(s, "<>="); i >= 0 {
		s = s[:i]
	}

	if s == "" {
		return e, false
	}
	e.name = s
	return e, true
}

// Parse converts raw pactree output for the package self into a Record.
//
// The listing is expected to come from a depth-unbounded, self-inclusive
// traversal; the line naming self itself is excluded. Both sets are
// deduplicated and sorted. Unresolvable optional entries are kept with a
// trailing [UnresolvableSuffix] rather than dropped.
func Parse(raw, self string) Record {
	mandatory := make(map[string]struct{})
	optional := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		e, ok := classifyLine(line)
		if !ok || e.name == self {
			continue
		}
		if e.optional {
			name := e.name
			if e.unresolvable {
				name += UnresolvableSuffix
			}
			optional[name] = struct{}{}
		} else {
			mandatory[e.name] = struct{}{}
		}
	}

	return Record{
		Mandatory: sortedKeys(mandatory),
		Optional:  sortedKeys(optional),
	}
}

// ParseList converts a flat pactree listing (the --unique form) into a
// single deduplicated, sorted name list spanning both mandatory and
// optional entries. Unresolvable markers are dropped: the list is matched
// against installed package names, which an unresolvable target never is.
func ParseList(raw, self string) []string {
	names := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		e, ok := classifyLine(line)
		if !ok || e.name == self || e.unresolvable {
			continue
		}
		names[e.name] = struct{}{}
	}

	return sortedKeys(names)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
