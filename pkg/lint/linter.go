package lint

import (
	"path"
	"strings"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/workspace"
)

// Linter is the base interface every rule implements, alongside exactly one
// of the four variant interfaces below.
type Linter interface {
	// Name returns the rule's stable name, used to tag its messages.
	Name() string
}

// ProjectLinter checks a property of the overall project. It runs once per
// engine run.
type ProjectLinter interface {
	Linter
	Run(ctx *ProjectContext, out *Formatter) (RunStatus, error)
}

// PackageLinter runs once per workspace package.
type PackageLinter interface {
	Linter
	Run(ctx *PackageContext, out *Formatter) (RunStatus, error)
}

// FilePathLinter runs once per tracked path.
type FilePathLinter interface {
	Linter
	Run(ctx *FilePathContext, out *Formatter) (RunStatus, error)
}

// ContentLinter runs once per tracked path whose bytes decode as text.
type ContentLinter interface {
	Linter
	Run(ctx *ContentContext, out *Formatter) (RunStatus, error)
}

// PreRunner is optionally implemented by file-path and content rules to
// skip a path before it is read or decoded.
type PreRunner interface {
	PreRun(ctx *FilePathContext) (RunStatus, error)
}

// ProjectContext is the lint context for the whole project.
type ProjectContext struct {
	ws *workspace.Context
}

// NewProjectContext wraps a workspace context for project-scoped lints.
func NewProjectContext(ws *workspace.Context) *ProjectContext {
	return &ProjectContext{ws: ws}
}

// Workspace returns the underlying workspace context.
func (c *ProjectContext) Workspace() *workspace.Context {
	return c.ws
}

// ProjectRoot returns the repository root.
func (c *ProjectContext) ProjectRoot() string {
	return c.ws.ProjectRoot()
}

// PackageGraph returns the dependency graph, computing it on first use.
func (c *ProjectContext) PackageGraph() (*graph.PackageGraph, error) {
	return c.ws.PackageGraph()
}

// WorkspaceHackName returns the dependency-unification module's name, if
// one is configured.
func (c *ProjectContext) WorkspaceHackName() string {
	return c.ws.WorkspaceHackName()
}

// FullPath returns the absolute path for a root-relative path.
func (c *ProjectContext) FullPath(rel string) string {
	return c.ws.FullPath(rel)
}

// PackageContext is the lint context for one workspace package. Unlike the
// project context it requires the package graph to be available.
type PackageContext struct {
	project *ProjectContext
	graph   *graph.PackageGraph
	pkg     *graph.Package
}

// NewPackageContext builds the context for one workspace member.
func NewPackageContext(project *ProjectContext, g *graph.PackageGraph, pkg *graph.Package) *PackageContext {
	return &PackageContext{project: project, graph: g, pkg: pkg}
}

// Project returns the enclosing project context.
func (c *PackageContext) Project() *ProjectContext {
	return c.project
}

// Graph returns the dependency graph.
func (c *PackageContext) Graph() *graph.PackageGraph {
	return c.graph
}

// Package returns this target's package node.
func (c *PackageContext) Package() *graph.Package {
	return c.pkg
}

// WorkspacePath returns the package's root-relative directory.
func (c *PackageContext) WorkspacePath() string {
	return c.pkg.Path
}

func (c *PackageContext) kind() Kind {
	return PackageKind(c.pkg.Name, c.pkg.Path)
}

// FilePathContext is the lint context for one tracked path.
type FilePathContext struct {
	project *ProjectContext
	path    string
}

// NewFilePathContext builds the context for one tracked path.
func NewFilePathContext(project *ProjectContext, filePath string) *FilePathContext {
	return &FilePathContext{project: project, path: filePath}
}

// Project returns the enclosing project context.
func (c *FilePathContext) Project() *ProjectContext {
	return c.project
}

// FilePath returns the root-relative path.
func (c *FilePathContext) FilePath() string {
	return c.path
}

// FullPath returns the absolute path.
func (c *FilePathContext) FullPath() string {
	return c.project.FullPath(c.path)
}

// Extension returns the file extension without the leading dot, or "".
func (c *FilePathContext) Extension() string {
	return strings.TrimPrefix(path.Ext(c.path), ".")
}

// ContentContext is the lint context for one file's decoded content. The
// engine only builds it for files whose bytes are valid text.
type ContentContext struct {
	file    *FilePathContext
	content string
}

// NewContentContext pairs a file-path context with its decoded content.
func NewContentContext(file *FilePathContext, content string) *ContentContext {
	return &ContentContext{file: file, content: content}
}

// File returns the underlying file-path context.
func (c *ContentContext) File() *FilePathContext {
	return c.file
}

// Content returns the decoded file content.
func (c *ContentContext) Content() string {
	return c.content
}
