// Package rules contains the concrete lint rules: the dependency-graph
// rule set plus the path, whitespace, and license-header checks.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
)

// BannedDepPolicy selects how a ban applies.
type BannedDepPolicy int

const (
	// BanAlways bans the dependency anywhere in the graph.
	BanAlways BannedDepPolicy = iota
	// BanDirectOnly bans it only as a direct dependency of a workspace
	// member.
	BanDirectOnly
)

// ParseBannedDepPolicy parses a config policy string.
func ParseBannedDepPolicy(s string) (BannedDepPolicy, error) {
	switch s {
	case "always":
		return BanAlways, nil
	case "direct":
		return BanDirectOnly, nil
	default:
		return 0, fmt.Errorf("unknown banned-dep policy %q (want \"always\" or \"direct\")", s)
	}
}

// BannedDepConfig is one banned dependency entry.
type BannedDepConfig struct {
	Message string
	Policy  BannedDepPolicy
}

// BannedDeps bans certain packages from being used as dependencies.
type BannedDeps struct {
	config map[string]BannedDepConfig
}

// NewBannedDeps creates the rule from a banned-name mapping.
func NewBannedDeps(config map[string]BannedDepConfig) *BannedDeps {
	return &BannedDeps{config: config}
}

// Name implements lint.Linter.
func (b *BannedDeps) Name() string {
	return "banned-deps"
}

// Run implements lint.ProjectLinter.
func (b *BannedDeps) Run(ctx *lint.ProjectContext, out *lint.Formatter) (lint.RunStatus, error) {
	g, err := ctx.PackageGraph()
	if err != nil {
		return lint.RunStatus{}, err
	}

	// Graph order is by name then version, so output is deterministic:
	// banned name first, then dependent package name.
	for _, pkg := range g.Packages() {
		config, ok := b.config[pkg.Name]
		if !ok {
			continue
		}
		switch config.Policy {
		case BanAlways:
			out.WriteKind(lint.ProjectKind(), lint.LevelError,
				fmt.Sprintf("banned project dependency '%s': %s", pkg.Name, config.Message))
		case BanDirectOnly:
			for _, link := range g.ReverseDirectLinks(pkg) {
				from := link.From
				if !from.InWorkspace || from.Name == ctx.WorkspaceHackName() {
					continue
				}
				out.WriteKind(lint.PackageKind(from.Name, from.Path), lint.LevelError,
					fmt.Sprintf("banned direct dependency '%s': %s", pkg.Name, config.Message))
			}
		}
	}

	return lint.Executed(), nil
}

// DirectDepDupsConfig allow-lists dependency names exempt from duplicate
// detection.
type DirectDepDupsConfig struct {
	Allow []string
}

// DirectDepDups ensures workspace packages depend on only one version of
// each third-party package.
type DirectDepDups struct {
	allow map[string]bool
}

// NewDirectDepDups creates the rule from its allow-list config.
func NewDirectDepDups(config DirectDepDupsConfig) *DirectDepDups {
	allow := make(map[string]bool, len(config.Allow))
	for _, name := range config.Allow {
		allow[name] = true
	}
	return &DirectDepDups{allow: allow}
}

// Name implements lint.Linter.
func (d *DirectDepDups) Name() string {
	return "direct-dep-dups"
}

// Run implements lint.ProjectLinter.
func (d *DirectDepDups) Run(ctx *lint.ProjectContext, out *lint.Formatter) (lint.RunStatus, error) {
	g, err := ctx.PackageGraph()
	if err != nil {
		return lint.RunStatus{}, err
	}

	// Direct deps by name -> version -> packages that depend on it. Only
	// the first hop out of the workspace counts.
	directDeps := make(map[string]map[string][]string)
	for _, from := range g.Workspace() {
		if from.Name == ctx.WorkspaceHackName() {
			continue
		}
		for _, link := range g.DirectLinks(from) {
			to := link.To
			if to.InWorkspace {
				continue
			}
			versions := directDeps[to.Name]
			if versions == nil {
				versions = make(map[string][]string)
				directDeps[to.Name] = versions
			}
			versions[to.Version] = append(versions[to.Version], from.Name)
		}
	}

	for _, name := range sortedKeys(directDeps) {
		if d.allow[name] {
			continue
		}
		versions := directDeps[name]
		if len(versions) < 2 {
			continue
		}
		var msg strings.Builder
		fmt.Fprintf(&msg, "duplicate direct dependency '%s':\n", name)
		for _, version := range sortedVersions(versions) {
			dependents := versions[version]
			sort.Strings(dependents)
			fmt.Fprintf(&msg, "  * %s (%s)\n", version, strings.Join(dependents, ", "))
		}
		out.Write(lint.LevelError, msg.String())
	}

	return lint.Executed(), nil
}

// DirectDuplicateGitDependencies ensures every git dependency of the
// workspace resolves to a single commit per repository.
type DirectDuplicateGitDependencies struct{}

// Name implements lint.Linter.
func (DirectDuplicateGitDependencies) Name() string {
	return "direct-duplicate-git-dependencies"
}

// Run implements lint.ProjectLinter.
func (DirectDuplicateGitDependencies) Run(ctx *lint.ProjectContext, out *lint.Formatter) (lint.RunStatus, error) {
	g, err := ctx.PackageGraph()
	if err != nil {
		return lint.RunStatus{}, err
	}

	// Direct deps by repository -> resolved commit -> (from, to) pairs.
	type pair struct{ from, to string }
	gitDeps := make(map[string]map[string][]pair)
	for _, from := range g.Workspace() {
		if from.Name == ctx.WorkspaceHackName() {
			continue
		}
		for _, link := range g.DirectLinks(from) {
			to := link.To
			if to.InWorkspace || link.Resolution.Kind != graph.ResolutionGit {
				continue
			}
			commits := gitDeps[link.Resolution.Repository]
			if commits == nil {
				commits = make(map[string][]pair)
				gitDeps[link.Resolution.Repository] = commits
			}
			commits[link.Resolution.Commit] = append(commits[link.Resolution.Commit], pair{from.Name, to.Name})
		}
	}

	for _, repository := range sortedKeys(gitDeps) {
		commits := gitDeps[repository]
		if len(commits) < 2 {
			continue
		}
		var msg strings.Builder
		fmt.Fprintf(&msg, "duplicate git dependency on repository '%s':\n", repository)
		for _, commit := range sortedKeys(commits) {
			fmt.Fprintf(&msg, "  * %s:\n", commit)
			pairs := commits[commit]
			sort.Slice(pairs, func(i, j int) bool {
				if pairs[i].from != pairs[j].from {
					return pairs[i].from < pairs[j].from
				}
				return pairs[i].to < pairs[j].to
			})
			for _, p := range pairs {
				fmt.Fprintf(&msg, "    * %s -> %s\n", p.from, p.to)
			}
		}
		out.Write(lint.LevelError, msg.String())
	}

	return lint.Executed(), nil
}

// UnpublishedPackagesOnlyUsePathDependencies ensures unpublished packages
// wire first-party dependencies through path replacements only.
type UnpublishedPackagesOnlyUsePathDependencies struct{}

// Name implements lint.Linter.
func (UnpublishedPackagesOnlyUsePathDependencies) Name() string {
	return "unpublished-packages-only-use-path-dependencies"
}

// Run implements lint.PackageLinter.
func (UnpublishedPackagesOnlyUsePathDependencies) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()
	if !pkg.Publish.IsNever() {
		return lint.Executed(), nil
	}

	for _, link := range ctx.Graph().DirectLinks(pkg) {
		if !link.To.InWorkspace || link.VersionReq == "*" {
			continue
		}
		out.Write(lint.LevelError, fmt.Sprintf(
			"unpublished package specifies a version of first-party dependency '%s' (%s); "+
				"unpublished packages should only use path dependencies for first-party packages",
			link.To.Name, link.VersionReq))
	}

	return lint.Executed(), nil
}

// PublishedPackagesDontDependOnUnpublishedPackages ensures publishable
// packages only depend on other publishable packages.
type PublishedPackagesDontDependOnUnpublishedPackages struct{}

// Name implements lint.Linter.
func (PublishedPackagesDontDependOnUnpublishedPackages) Name() string {
	return "published-packages-dont-depend-on-unpublished-packages"
}

// Run implements lint.PackageLinter.
func (PublishedPackagesDontDependOnUnpublishedPackages) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()
	if pkg.Publish.IsNever() {
		return lint.Executed(), nil
	}

	for _, link := range ctx.Graph().DirectLinks(pkg) {
		if link.To.Publish.IsNever() {
			out.Write(lint.LevelError, fmt.Sprintf(
				"published package can't depend on unpublished package '%s'", link.To.Name))
		}
	}

	return lint.Executed(), nil
}

// OnlyPublishToPublicRegistry ensures a publishable package's registry set
// is empty or exactly the default public registry.
type OnlyPublishToPublicRegistry struct{}

// Name implements lint.Linter.
func (OnlyPublishToPublicRegistry) Name() string {
	return "only-publish-to-public-registry"
}

// Run implements lint.PackageLinter.
func (OnlyPublishToPublicRegistry) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	publish := ctx.Package().Publish

	ok := false
	switch publish.Kind {
	case graph.PublishNever:
		ok = true
	case graph.PublishRegistries:
		// An empty registry set is an unpublished package.
		ok = len(publish.Registries) == 0 ||
			(len(publish.Registries) == 1 && publish.Registries[0] == graph.PublicRegistry)
	}

	if !ok {
		out.Write(lint.LevelError, fmt.Sprintf(
			"published package should only be publishable to %[1]s; "+
				"if you intend to publish this package, set 'publish: [%[1]q]' in %[2]s, "+
				"otherwise set 'publish: false'",
			graph.PublicRegistry, graph.MetaFileName))
	}

	return lint.Executed(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedVersions[V any](m map[string]V) []string {
	versions := sortedKeys(m)
	sort.Slice(versions, func(i, j int) bool {
		return graph.CompareVersions(versions[i], versions[j]) < 0
	})
	return versions
}
