// Package graph models the resolved dependency graph of a multi-module
// workspace: packages with metadata, and versioned dependency links between
// them. It keeps both forward and reverse adjacency so that reverse-edge
// queries stay linear.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// PublicRegistry is the default public module registry.
const PublicRegistry = "proxy.golang.org"

// PublishKind describes where a package may be published.
type PublishKind int

const (
	// PublishUnrestricted allows publishing anywhere.
	PublishUnrestricted PublishKind = iota
	// PublishNever forbids publishing.
	PublishNever
	// PublishRegistries restricts publishing to a registry set.
	PublishRegistries
)

// PublishPolicy is a package's publish policy. The zero value is
// unrestricted, matching a module with no metadata file.
type PublishPolicy struct {
	Kind       PublishKind
	Registries []string
}

// IsNever reports whether the package must never be published. An empty
// registry set is equivalent to never.
func (p PublishPolicy) IsNever() bool {
	return p.Kind == PublishNever || (p.Kind == PublishRegistries && len(p.Registries) == 0)
}

// LinkKind is the kind of a dependency declaration.
type LinkKind int

const (
	// LinkNormal is a regular require dependency.
	LinkNormal LinkKind = iota
	// LinkTool is a tool-directive dependency.
	LinkTool
	// LinkDev is a development-only dependency.
	LinkDev
)

// ResolutionKind describes how a dependency was resolved.
type ResolutionKind int

const (
	// ResolutionRegistry is a release version fetched from a registry.
	ResolutionRegistry ResolutionKind = iota
	// ResolutionPath is a local directory replacement.
	ResolutionPath
	// ResolutionGit is a pseudo-versioned dependency pinned to a commit.
	ResolutionGit
)

// Resolution carries the resolution details of a link. Dir is set for path
// resolutions, Repository and Commit for git resolutions.
type Resolution struct {
	Kind       ResolutionKind
	Dir        string
	Repository string
	Commit     string
}

// BuildTarget is a buildable command provided by a workspace package.
type BuildTarget struct {
	Name string
	Path string
}

// Package is a node in the dependency graph. Identity is Name plus Version;
// the same external module may appear once per distinct resolved version.
type Package struct {
	Name        string
	Version     string
	InWorkspace bool
	// Path is the workspace-relative directory, empty for external packages.
	Path         string
	Publish      PublishPolicy
	Authors      []string
	License      string
	BuildTargets []BuildTarget
	HasGenerate  bool
}

// ShortName returns the last element of the package name.
func (p *Package) ShortName() string {
	if i := strings.LastIndexByte(p.Name, '/'); i >= 0 {
		return p.Name[i+1:]
	}
	return p.Name
}

func (p *Package) key() string {
	return Key(p.Name, p.Version)
}

// Key returns the graph key for a package name and version.
func Key(name, version string) string {
	return name + "@" + version
}

// Link is a directed dependency edge from a depending package to its
// dependency.
type Link struct {
	From       *Package
	To         *Package
	VersionReq string
	Kind       LinkKind
	Resolution Resolution
}

// PackageGraph is an immutable resolved dependency graph.
type PackageGraph struct {
	packages  map[string]*Package
	order     []*Package
	workspace []*Package
	forward   map[string][]*Link
	reverse   map[string][]*Link
}

// Packages returns every package, ordered by name then version.
func (g *PackageGraph) Packages() []*Package {
	return g.order
}

// Workspace returns the workspace members, ordered by name then version.
func (g *PackageGraph) Workspace() []*Package {
	return g.workspace
}

// PackagesNamed returns every package with the given name, in version order.
func (g *PackageGraph) PackagesNamed(name string) []*Package {
	var pkgs []*Package
	for _, p := range g.order {
		if p.Name == name {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

// DirectLinks returns the outgoing links of a package, ordered by target
// name then version.
func (g *PackageGraph) DirectLinks(p *Package) []*Link {
	return g.forward[p.key()]
}

// ReverseDirectLinks returns the incoming links of a package, ordered by
// source name then version.
func (g *PackageGraph) ReverseDirectLinks(p *Package) []*Link {
	return g.reverse[p.key()]
}

// Len returns the number of packages in the graph.
func (g *PackageGraph) Len() int {
	return len(g.order)
}

// Builder assembles a PackageGraph. It validates that link endpoints exist
// and that package identities are unique.
type Builder struct {
	packages map[string]*Package
	links    []*Link
	errs     []error
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{packages: make(map[string]*Package)}
}

// AddPackage adds a package node. Duplicate name@version pairs are an error
// at Build time.
func (b *Builder) AddPackage(p *Package) *Builder {
	if _, ok := b.packages[p.key()]; ok {
		b.errs = append(b.errs, fmt.Errorf("duplicate package %s", p.key()))
		return b
	}
	b.packages[p.key()] = p
	return b
}

// AddLink adds a dependency edge between two previously added packages,
// identified by their name@version keys.
func (b *Builder) AddLink(fromKey, toKey, versionReq string, kind LinkKind, res Resolution) *Builder {
	from, ok := b.packages[fromKey]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("link source %s does not exist", fromKey))
		return b
	}
	to, ok := b.packages[toKey]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("link target %s does not exist", toKey))
		return b
	}
	b.links = append(b.links, &Link{From: from, To: to, VersionReq: versionReq, Kind: kind, Resolution: res})
	return b
}

// Build finalizes the graph, computing the deterministic package order and
// the forward and reverse adjacency indexes.
func (b *Builder) Build() (*PackageGraph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	g := &PackageGraph{
		packages: b.packages,
		forward:  make(map[string][]*Link),
		reverse:  make(map[string][]*Link),
	}
	for _, p := range b.packages {
		g.order = append(g.order, p)
		if p.InWorkspace {
			g.workspace = append(g.workspace, p)
		}
	}
	sortPackages(g.order)
	sortPackages(g.workspace)

	for _, l := range b.links {
		g.forward[l.From.key()] = append(g.forward[l.From.key()], l)
		g.reverse[l.To.key()] = append(g.reverse[l.To.key()], l)
	}
	for _, links := range g.forward {
		sortLinks(links, func(l *Link) *Package { return l.To })
	}
	for _, links := range g.reverse {
		sortLinks(links, func(l *Link) *Package { return l.From })
	}
	return g, nil
}

func sortPackages(pkgs []*Package) {
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return CompareVersions(pkgs[i].Version, pkgs[j].Version) < 0
	})
}

func sortLinks(links []*Link, end func(*Link) *Package) {
	sort.Slice(links, func(i, j int) bool {
		a, b := end(links[i]), end(links[j])
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return CompareVersions(a.Version, b.Version) < 0
	})
}

// CompareVersions orders two versions, semver-aware with a lexical
// tiebreak for non-semver strings.
func CompareVersions(a, b string) int {
	if semver.IsValid(a) && semver.IsValid(b) {
		if c := semver.Compare(a, b); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}
