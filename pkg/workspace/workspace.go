// Package workspace owns the per-run context shared by every lint: the
// version-control gateway and the resolved package graph, both computed at
// most once per run. The context assumes the repository and its manifests
// do not change during a run; overlapping mutating operations are
// unsupported.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quaylabs/repolint/pkg/graph"
)

// Resolver builds the package graph for a workspace root.
type Resolver func(root string) (*graph.PackageGraph, error)

// Context is the process-scoped workspace context, created once per
// invocation and passed by reference into every component.
type Context struct {
	vcs           VCS
	currentDir    string
	currentRelDir string
	workspaceHack string
	graph         func() (*graph.PackageGraph, error)
	tracked       func() ([]string, error)
}

// Option configures a Context.
type Option func(*options)

type options struct {
	vcs           VCS
	currentDir    string
	workspaceHack string
	resolver      Resolver
}

// WithVCS substitutes the version-control gateway. Used by tests to supply
// fake file lists.
func WithVCS(vcs VCS) Option {
	return func(o *options) { o.vcs = vcs }
}

// WithResolver substitutes the graph resolver. Used by tests to supply
// fabricated in-memory graphs.
func WithResolver(r Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithWorkspaceHack names the dependency-unification module whose edges are
// excluded from fan-in analysis.
func WithWorkspaceHack(name string) Option {
	return func(o *options) { o.workspaceHack = name }
}

// WithCurrentDir overrides the process working directory.
func WithCurrentDir(dir string) Option {
	return func(o *options) { o.currentDir = dir }
}

// NewContext builds the workspace context. The current directory must be a
// descendant of the repository root; relative-path reporting is always
// root-relative.
func NewContext(opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.vcs == nil {
		vcs, err := NewGitCli()
		if err != nil {
			return nil, err
		}
		o.vcs = vcs
	}
	if o.currentDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("fetching current dir: %w", err)
		}
		o.currentDir = dir
	}
	if o.resolver == nil {
		o.resolver = graph.Resolve
	}

	rel, err := relativeTo(o.currentDir, o.vcs.Root())
	if err != nil {
		return nil, &OutsideRootError{CurrentDir: o.currentDir, ProjectRoot: o.vcs.Root()}
	}

	ctx := &Context{
		vcs:           o.vcs,
		currentDir:    o.currentDir,
		currentRelDir: rel,
		workspaceHack: o.workspaceHack,
	}
	resolver := o.resolver
	root := o.vcs.Root()
	ctx.graph = sync.OnceValues(func() (*graph.PackageGraph, error) {
		g, err := resolver(root)
		if err != nil {
			return nil, &GraphBuildError{Err: err}
		}
		return g, nil
	})
	ctx.tracked = sync.OnceValues(o.vcs.TrackedFiles)
	return ctx, nil
}

// ProjectRoot returns the repository root.
func (c *Context) ProjectRoot() string {
	return c.vcs.Root()
}

// CurrentDir returns the process working directory.
func (c *Context) CurrentDir() string {
	return c.currentDir
}

// CurrentRelDir returns the working directory relative to the project root.
func (c *Context) CurrentRelDir() string {
	return c.currentRelDir
}

// VCS returns the version-control gateway.
func (c *Context) VCS() VCS {
	return c.vcs
}

// TrackedFiles returns every tracked path relative to the project root,
// querying the gateway on first use and reusing the list afterwards.
func (c *Context) TrackedFiles() ([]string, error) {
	return c.tracked()
}

// ChangedFiles returns the paths changed between two revisions. Unlike the
// tracked-file list this is parameterized and therefore not cached.
func (c *Context) ChangedFiles(oldRev, newRev, diffFilter string) ([]string, error) {
	return c.vcs.FilesChangedBetween(oldRev, newRev, diffFilter)
}

// PackageGraph returns the resolved dependency graph, computing it on
// first use and reusing it for the context's lifetime.
func (c *Context) PackageGraph() (*graph.PackageGraph, error) {
	return c.graph()
}

// WorkspaceHackName returns the configured dependency-unification module
// name, or "" when none is configured.
func (c *Context) WorkspaceHackName() string {
	return c.workspaceHack
}

// FullPath joins a root-relative path with the project root.
func (c *Context) FullPath(rel string) string {
	return filepath.Join(c.ProjectRoot(), rel)
}

func relativeTo(dir, root string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not under %s", dir, root)
	}
	return rel, nil
}
