package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
	"github.com/quaylabs/repolint/pkg/workspace"
)

type fakeVCS struct {
	root    string
	tracked []string
}

func (f *fakeVCS) Root() string                                         { return f.root }
func (f *fakeVCS) TrackedFiles() ([]string, error)                      { return f.tracked, nil }
func (f *fakeVCS) FilesChangedBetween(_, _, _ string) ([]string, error) { return nil, nil }
func (f *fakeVCS) MergeBase(string) (string, error)                     { return "", nil }

// testProject builds a project context over a fabricated graph.
func testProject(t *testing.T, g *graph.PackageGraph, opts ...workspace.Option) *lint.ProjectContext {
	t.Helper()
	root := t.TempDir()
	all := append([]workspace.Option{
		workspace.WithVCS(&fakeVCS{root: root}),
		workspace.WithCurrentDir(root),
		workspace.WithResolver(func(string) (*graph.PackageGraph, error) { return g, nil }),
	}, opts...)
	ws, err := workspace.NewContext(all...)
	require.NoError(t, err)
	return lint.NewProjectContext(ws)
}

// runProject runs a project rule and returns its messages.
func runProject(t *testing.T, rule lint.ProjectLinter, ctx *lint.ProjectContext) []lint.Message {
	t.Helper()
	results := &lint.Results{}
	out := lint.NewFormatter(rule.Name(), lint.ProjectKind(), results)
	status, err := rule.Run(ctx, out)
	require.NoError(t, err)
	require.False(t, status.IsSkipped())
	return results.Messages
}

// runPackage runs a package rule against one workspace member and returns
// its messages.
func runPackage(t *testing.T, rule lint.PackageLinter, project *lint.ProjectContext, pkgName string) []lint.Message {
	t.Helper()
	g, err := project.PackageGraph()
	require.NoError(t, err)

	var pkg *graph.Package
	for _, p := range g.Workspace() {
		if p.Name == pkgName {
			pkg = p
		}
	}
	require.NotNil(t, pkg, "workspace package %s not found", pkgName)

	results := &lint.Results{}
	out := lint.NewFormatter(rule.Name(), lint.PackageKind(pkg.Name, pkg.Path), results)
	status, err := rule.Run(lint.NewPackageContext(project, g, pkg), out)
	require.NoError(t, err)
	require.False(t, status.IsSkipped())
	return results.Messages
}

// runContent runs a content rule, honoring its pre-run hook, and returns
// the messages plus whether the path was skipped.
func runContent(t *testing.T, rule lint.ContentLinter, project *lint.ProjectContext, path, content string) ([]lint.Message, bool) {
	t.Helper()
	fileCtx := lint.NewFilePathContext(project, path)
	if p, ok := rule.(lint.PreRunner); ok {
		status, err := p.PreRun(fileCtx)
		require.NoError(t, err)
		if status.IsSkipped() {
			return nil, true
		}
	}
	results := &lint.Results{}
	out := lint.NewFormatter(rule.Name(), lint.ContentKind(path), results)
	status, err := rule.Run(lint.NewContentContext(fileCtx, content), out)
	require.NoError(t, err)
	require.False(t, status.IsSkipped())
	return results.Messages, false
}

func texts(msgs []lint.Message) []string {
	var out []string
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
