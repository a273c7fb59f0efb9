package collect

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/pacscope/pacscope/pkg/deptree"
	"github.com/pacscope/pacscope/pkg/errors"
)

// Mode picks how the seed packages for a collection run are chosen.
type Mode string

const (
	ModeAll    Mode = "all"    // every installed package
	ModeFirst  Mode = "first"  // first N explicitly installed packages
	ModeLast   Mode = "last"   // last N explicitly installed packages
	ModeRandom Mode = "random" // N random explicitly installed packages
	ModeList   Mode = "list"   // caller-supplied package names
)

// Selection is a parsed selection mode plus its parameter.
type Selection struct {
	Mode     Mode
	Count    int      // for first/last/random
	Packages []string // for list
}

// ParseSelection parses the CLI form of a selection: "all", "first:N",
// "last:N" or "random:N". Explicit package lists are built by the caller
// with [ListSelection].
func ParseSelection(s string) (Selection, error) {
	if s == "" || s == string(ModeAll) {
		return Selection{Mode: ModeAll}, nil
	}

	mode, arg, ok := strings.Cut(s, ":")
	if !ok {
		return Selection{}, errors.New(errors.ErrCodeInvalidArgument,
			"invalid selection %q (want all, first:N, last:N or random:N)", s)
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return Selection{}, errors.New(errors.ErrCodeInvalidArgument, "invalid selection count %q", arg)
	}

	switch Mode(mode) {
	case ModeFirst, ModeLast, ModeRandom:
		return Selection{Mode: Mode(mode), Count: n}, nil
	}
	return Selection{}, errors.New(errors.ErrCodeInvalidArgument, "unknown selection mode %q", mode)
}

// ListSelection builds an explicit-list selection.
func ListSelection(packages []string) Selection {
	return Selection{Mode: ModeList, Packages: packages}
}

// Describe returns the selection in its CLI form, recorded in the
// snapshot envelope.
func (s Selection) Describe() string {
	switch s.Mode {
	case ModeAll, "":
		return string(ModeAll)
	case ModeList:
		return strings.Join(s.Packages, ",")
	default:
		return fmt.Sprintf("%s:%d", s.Mode, s.Count)
	}
}

// seeds resolves the selection to its seed package set.
//
// firstN/lastN slice the explicitly-installed list in its enumeration
// order and clamp out-of-range counts to the full list. randomN draws
// without replacement and fails with INVALID_ARGUMENT when the count
// exceeds the explicit-package count. Explicit lists fail with
// PACKAGE_NOT_FOUND naming the first package that is not installed.
func (s Selection) seeds(installed, explicit []string) ([]string, error) {
	switch s.Mode {
	case ModeFirst:
		n := min(s.Count, len(explicit))
		return slices.Clone(explicit[:n]), nil

	case ModeLast:
		start := len(explicit) - s.Count
		if start < 0 {
			start = 0
		}
		return slices.Clone(explicit[start:]), nil

	case ModeRandom:
		if s.Count > len(explicit) {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"random count %d exceeds explicitly installed packages (%d)", s.Count, len(explicit))
		}
		shuffled := slices.Clone(explicit)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:s.Count], nil

	case ModeList:
		for _, name := range s.Packages {
			if err := errors.ValidatePacmanPackageName(name); err != nil {
				return nil, err
			}
			if !slices.Contains(installed, name) {
				return nil, errors.New(errors.ErrCodePackageNotFound, "package not installed: %s", name)
			}
		}
		return slices.Clone(s.Packages), nil
	}

	return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown selection mode %q", s.Mode)
}

// Expand computes the installed-package subset a selection scopes
// collection to.
//
// For every seed it takes the complete transitive dependency closure
// including optional edges — the flat optional-inclusive listing — and
// unions the closures over all seeds. This is deliberately wider than the
// mandatory/optional split stored on the final graph: scoping answers
// "what must be present so this selection is not broken", which pulls in
// optional dependencies' own transitive mandatory dependencies.
//
// The result preserves the order of installed. ModeAll is the identity.
// A seed whose closure listing fails keeps the seed itself in scope and
// records a failure instead of aborting.
func Expand(ctx context.Context, src TreeSource, installed, explicit []string, sel Selection, opts Options) ([]string, []Failure, error) {
	opts = opts.WithDefaults()

	if sel.Mode == ModeAll || sel.Mode == "" {
		return slices.Clone(installed), nil, nil
	}

	seeds, err := sel.seeds(installed, explicit)
	if err != nil {
		return nil, nil, err
	}

	var failures FailureLog
	closure := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		closure[seed] = struct{}{}

		raw, err := runBounded(ctx, opts.ToolTimeout, seed, src.FlatDependencies)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			opts.Logger("closure listing failed: %s: %v", seed, err)
			failures.Append(seed, PhaseClosure, err)
			continue
		}
		for _, name := range deptree.ParseList(raw, seed) {
			closure[name] = struct{}{}
		}
	}

	var filtered []string
	for _, name := range installed {
		if _, ok := closure[name]; ok {
			filtered = append(filtered, name)
		}
	}
	return filtered, failures.All(), nil
}
