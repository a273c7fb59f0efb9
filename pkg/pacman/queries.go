package pacman

import (
	"context"
	"strings"

	"github.com/pacscope/pacscope/pkg/pkggraph"
)

// Installed returns all installed package names in pacman's enumeration
// order (pacman -Qq).
func (s *System) Installed(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Qq")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// ExplicitlyInstalled returns the names of explicitly installed packages
// in enumeration order (pacman -Qqe). Selection modes firstN/lastN/randomN
// draw from this list in exactly this order.
func (s *System) ExplicitlyInstalled(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Qqe")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// Foreign returns the set of foreign packages: installed but absent from
// every configured sync repository (pacman -Qqm).
func (s *System) Foreign(ctx context.Context) (map[string]bool, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Qqm")
	if err != nil {
		return nil, err
	}
	foreign := make(map[string]bool)
	for _, name := range lines(out) {
		foreign[name] = true
	}
	return foreign, nil
}

// Versions returns the installed version per package (pacman -Q, lines of
// "name version").
func (s *System) Versions(ctx context.Context) (map[string]string, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Q")
	if err != nil {
		return nil, err
	}
	versions := make(map[string]string)
	for _, line := range lines(out) {
		name, version, ok := strings.Cut(line, " ")
		if ok {
			versions[name] = version
		}
	}
	return versions, nil
}

// SyncRepositories returns the origin repository per package known to any
// configured sync repository (pacman -Sl, lines of "repo name version").
// Foreign packages do not appear here.
func (s *System) SyncRepositories(ctx context.Context) (map[string]string, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Sl")
	if err != nil {
		return nil, err
	}
	repos := make(map[string]string)
	for _, line := range lines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			// First repo wins when a package exists in several.
			if _, seen := repos[fields[1]]; !seen {
				repos[fields[1]] = fields[0]
			}
		}
	}
	return repos, nil
}

// URLs returns the upstream homepage per installed package, parsed from
// the "Name"/"URL" fields of pacman -Qi.
func (s *System) URLs(ctx context.Context) (map[string]string, error) {
	out, err := s.runner.Run(ctx, pacmanBin, "-Qi")
	if err != nil {
		return nil, err
	}

	urls := make(map[string]string)
	var current string
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			current = value
		case "URL":
			if current != "" && value != "None" {
				urls[current] = value
			}
		}
	}
	return urls, nil
}

// Metadata gathers all side-channel metadata maps in one pass and
// resolves the repository per installed package: sync-repo name when the
// package exists in a sync repository, "aur" for foreign-only packages.
// Packages absent from every map take the assembler's defaults.
func (s *System) Metadata(ctx context.Context) (pkggraph.Metadata, error) {
	versions, err := s.Versions(ctx)
	if err != nil {
		return pkggraph.Metadata{}, err
	}
	explicitList, err := s.ExplicitlyInstalled(ctx)
	if err != nil {
		return pkggraph.Metadata{}, err
	}
	foreign, err := s.Foreign(ctx)
	if err != nil {
		return pkggraph.Metadata{}, err
	}
	sync, err := s.SyncRepositories(ctx)
	if err != nil {
		return pkggraph.Metadata{}, err
	}
	urls, err := s.URLs(ctx)
	if err != nil {
		return pkggraph.Metadata{}, err
	}

	explicit := make(map[string]bool, len(explicitList))
	for _, name := range explicitList {
		explicit[name] = true
	}

	repos := make(map[string]string, len(versions))
	for name := range versions {
		switch {
		case sync[name] != "":
			repos[name] = sync[name]
		case foreign[name]:
			repos[name] = pkggraph.RepoAUR
		}
	}

	return pkggraph.Metadata{
		Versions:     versions,
		Explicit:     explicit,
		Foreign:      foreign,
		Repositories: repos,
		URLs:         urls,
	}, nil
}

// DependencyTree returns the raw forward dependency tree for name:
// depth-unbounded, self-inclusive, with optional and unresolvable markers
// (pactree -a).
func (s *System) DependencyTree(ctx context.Context, name string) (string, error) {
	return s.runner.Run(ctx, pactreeBin, "-a", name)
}

// ReverseTree returns the raw reverse dependency tree for name
// (pactree -a -r).
func (s *System) ReverseTree(ctx context.Context, name string) (string, error) {
	return s.runner.Run(ctx, pactreeBin, "-a", "-r", name)
}

// FlatDependencies returns the raw flat, optional-inclusive transitive
// dependency listing for name (pactree -a -u). The selection expander
// uses this wider form: it deliberately pulls in optional dependencies'
// own transitive mandatory dependencies.
func (s *System) FlatDependencies(ctx context.Context, name string) (string, error) {
	return s.runner.Run(ctx, pactreeBin, "-a", "-u", name)
}
