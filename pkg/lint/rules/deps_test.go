package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
	"github.com/quaylabs/repolint/pkg/lint/rules"
	"github.com/quaylabs/repolint/pkg/workspace"
)

func wsPkg(name, path string) *graph.Package {
	return &graph.Package{Name: name, Version: "v0.0.0", InWorkspace: true, Path: path}
}

func extPkg(name, version string) *graph.Package {
	return &graph.Package{Name: name, Version: version}
}

func TestBannedDeps_Always(t *testing.T) {
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app", ".")).
		AddPackage(extPkg("example.com/bad", "v1.0.0")).
		AddLink(graph.Key("example.com/app", "v0.0.0"), graph.Key("example.com/bad", "v1.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	rule := rules.NewBannedDeps(map[string]rules.BannedDepConfig{
		"example.com/bad": {Message: "use example.com/good instead", Policy: rules.BanAlways},
	})
	msgs := runProject(t, rule, testProject(t, g))

	require.Len(t, msgs, 1)
	assert.Equal(t, lint.LevelError, msgs[0].Level)
	assert.Equal(t, lint.KindProject, msgs[0].Kind.Variant)
	assert.Equal(t, "banned project dependency 'example.com/bad': use example.com/good instead", msgs[0].Text)
}

func TestBannedDeps_DirectOnly(t *testing.T) {
	appKey := graph.Key("example.com/app", "v0.0.0")
	hackKey := graph.Key("example.com/depshack", "v0.0.0")
	badKey := graph.Key("example.com/bad", "v1.0.0")
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app", "modules/app")).
		AddPackage(wsPkg("example.com/depshack", "modules/depshack")).
		AddPackage(extPkg("example.com/bad", "v1.0.0")).
		AddLink(appKey, badKey, "v1.0.0", graph.LinkNormal, graph.Resolution{}).
		AddLink(hackKey, badKey, "v1.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	rule := rules.NewBannedDeps(map[string]rules.BannedDepConfig{
		"example.com/bad": {Message: "no", Policy: rules.BanDirectOnly},
	})
	ctx := testProject(t, g, workspace.WithWorkspaceHack("example.com/depshack"))
	msgs := runProject(t, rule, ctx)

	// The workspace-hack's edge is exempt; only the app's remains.
	require.Len(t, msgs, 1)
	assert.Equal(t, lint.KindPackage, msgs[0].Kind.Variant)
	assert.Equal(t, "example.com/app", msgs[0].Kind.Name)
	assert.Equal(t, "modules/app", msgs[0].Kind.Path)
	assert.Equal(t, "banned direct dependency 'example.com/bad': no", msgs[0].Text)
}

func TestDirectDepDups(t *testing.T) {
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app1", "modules/app1")).
		AddPackage(wsPkg("example.com/app2", "modules/app2")).
		AddPackage(extPkg("example.com/lib", "v1.2.0")).
		AddPackage(extPkg("example.com/lib", "v1.10.0")).
		AddLink(graph.Key("example.com/app1", "v0.0.0"), graph.Key("example.com/lib", "v1.10.0"),
			"v1.10.0", graph.LinkNormal, graph.Resolution{}).
		AddLink(graph.Key("example.com/app2", "v0.0.0"), graph.Key("example.com/lib", "v1.2.0"),
			"v1.2.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	rule := rules.NewDirectDepDups(rules.DirectDepDupsConfig{})
	msgs := runProject(t, rule, testProject(t, g))

	require.Len(t, msgs, 1)
	// Versions in semver order, dependents named per version.
	assert.Equal(t, "duplicate direct dependency 'example.com/lib':\n"+
		"  * v1.2.0 (example.com/app2)\n"+
		"  * v1.10.0 (example.com/app1)\n", msgs[0].Text)
}

func TestDirectDepDups_AllowList(t *testing.T) {
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app1", "modules/app1")).
		AddPackage(wsPkg("example.com/app2", "modules/app2")).
		AddPackage(extPkg("example.com/lib", "v1.0.0")).
		AddPackage(extPkg("example.com/lib", "v2.0.0")).
		AddLink(graph.Key("example.com/app1", "v0.0.0"), graph.Key("example.com/lib", "v1.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		AddLink(graph.Key("example.com/app2", "v0.0.0"), graph.Key("example.com/lib", "v2.0.0"),
			"v2.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	rule := rules.NewDirectDepDups(rules.DirectDepDupsConfig{Allow: []string{"example.com/lib"}})
	msgs := runProject(t, rule, testProject(t, g))
	assert.Empty(t, msgs)
}

func TestDirectDepDups_SingleVersionClean(t *testing.T) {
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app1", "modules/app1")).
		AddPackage(wsPkg("example.com/app2", "modules/app2")).
		AddPackage(extPkg("example.com/lib", "v1.0.0")).
		AddLink(graph.Key("example.com/app1", "v0.0.0"), graph.Key("example.com/lib", "v1.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		AddLink(graph.Key("example.com/app2", "v0.0.0"), graph.Key("example.com/lib", "v1.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	msgs := runProject(t, rules.NewDirectDepDups(rules.DirectDepDupsConfig{}), testProject(t, g))
	assert.Empty(t, msgs)
}

func TestDirectDuplicateGitDependencies(t *testing.T) {
	gitRes := func(commit string) graph.Resolution {
		return graph.Resolution{Kind: graph.ResolutionGit, Repository: "example.com/fork", Commit: commit}
	}
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app1", "modules/app1")).
		AddPackage(wsPkg("example.com/app2", "modules/app2")).
		AddPackage(extPkg("example.com/fork", "v0.0.0-20240101000000-aaaaaaaaaaaa")).
		AddPackage(extPkg("example.com/fork", "v0.0.0-20240201000000-bbbbbbbbbbbb")).
		AddLink(graph.Key("example.com/app1", "v0.0.0"),
			graph.Key("example.com/fork", "v0.0.0-20240101000000-aaaaaaaaaaaa"),
			"v0.0.0-20240101000000-aaaaaaaaaaaa", graph.LinkNormal, gitRes("aaaaaaaaaaaa")).
		AddLink(graph.Key("example.com/app2", "v0.0.0"),
			graph.Key("example.com/fork", "v0.0.0-20240201000000-bbbbbbbbbbbb"),
			"v0.0.0-20240201000000-bbbbbbbbbbbb", graph.LinkNormal, gitRes("bbbbbbbbbbbb")).
		Build()
	require.NoError(t, err)

	msgs := runProject(t, rules.DirectDuplicateGitDependencies{}, testProject(t, g))

	require.Len(t, msgs, 1)
	assert.Equal(t, "duplicate git dependency on repository 'example.com/fork':\n"+
		"  * aaaaaaaaaaaa:\n"+
		"    * example.com/app1 -> example.com/fork\n"+
		"  * bbbbbbbbbbbb:\n"+
		"    * example.com/app2 -> example.com/fork\n", msgs[0].Text)
}

func TestDirectDuplicateGitDependencies_SingleCommitClean(t *testing.T) {
	res := graph.Resolution{Kind: graph.ResolutionGit, Repository: "example.com/fork", Commit: "aaaaaaaaaaaa"}
	g, err := graph.NewBuilder().
		AddPackage(wsPkg("example.com/app1", "modules/app1")).
		AddPackage(wsPkg("example.com/app2", "modules/app2")).
		AddPackage(extPkg("example.com/fork", "v0.0.0-20240101000000-aaaaaaaaaaaa")).
		AddLink(graph.Key("example.com/app1", "v0.0.0"),
			graph.Key("example.com/fork", "v0.0.0-20240101000000-aaaaaaaaaaaa"),
			"v0.0.0-20240101000000-aaaaaaaaaaaa", graph.LinkNormal, res).
		AddLink(graph.Key("example.com/app2", "v0.0.0"),
			graph.Key("example.com/fork", "v0.0.0-20240101000000-aaaaaaaaaaaa"),
			"v0.0.0-20240101000000-aaaaaaaaaaaa", graph.LinkNormal, res).
		Build()
	require.NoError(t, err)

	msgs := runProject(t, rules.DirectDuplicateGitDependencies{}, testProject(t, g))
	assert.Empty(t, msgs)
}

func publishNever() graph.PublishPolicy {
	return graph.PublishPolicy{Kind: graph.PublishNever}
}

func TestUnpublishedPackagesOnlyUsePathDependencies(t *testing.T) {
	app := wsPkg("example.com/app", "modules/app")
	app.Publish = publishNever()
	libGood := wsPkg("example.com/libgood", "modules/libgood")
	libBad := wsPkg("example.com/libbad", "modules/libbad")
	g, err := graph.NewBuilder().
		AddPackage(app).
		AddPackage(libGood).
		AddPackage(libBad).
		AddLink(graph.Key("example.com/app", "v0.0.0"), graph.Key("example.com/libgood", "v0.0.0"),
			"*", graph.LinkNormal, graph.Resolution{Kind: graph.ResolutionPath, Dir: "../libgood"}).
		AddLink(graph.Key("example.com/app", "v0.0.0"), graph.Key("example.com/libbad", "v0.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	project := testProject(t, g)
	msgs := runPackage(t, rules.UnpublishedPackagesOnlyUsePathDependencies{}, project, "example.com/app")

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "example.com/libbad")
	assert.Contains(t, msgs[0].Text, "v1.0.0")
}

func TestUnpublishedPackagesOnlyUsePathDependencies_PublishedExempt(t *testing.T) {
	app := wsPkg("example.com/app", "modules/app")
	lib := wsPkg("example.com/lib", "modules/lib")
	g, err := graph.NewBuilder().
		AddPackage(app).
		AddPackage(lib).
		AddLink(graph.Key("example.com/app", "v0.0.0"), graph.Key("example.com/lib", "v0.0.0"),
			"v1.0.0", graph.LinkNormal, graph.Resolution{}).
		Build()
	require.NoError(t, err)

	msgs := runPackage(t, rules.UnpublishedPackagesOnlyUsePathDependencies{}, testProject(t, g), "example.com/app")
	assert.Empty(t, msgs)
}

func TestPublishedPackagesDontDependOnUnpublishedPackages(t *testing.T) {
	app := wsPkg("example.com/app", "modules/app")
	lib := wsPkg("example.com/lib", "modules/lib")
	lib.Publish = publishNever()
	g, err := graph.NewBuilder().
		AddPackage(app).
		AddPackage(lib).
		AddLink(graph.Key("example.com/app", "v0.0.0"), graph.Key("example.com/lib", "v0.0.0"),
			"*", graph.LinkNormal, graph.Resolution{Kind: graph.ResolutionPath}).
		Build()
	require.NoError(t, err)

	msgs := runPackage(t, rules.PublishedPackagesDontDependOnUnpublishedPackages{}, testProject(t, g), "example.com/app")

	require.Len(t, msgs, 1)
	assert.Equal(t, "published package can't depend on unpublished package 'example.com/lib'", msgs[0].Text)
}

func TestOnlyPublishToPublicRegistry(t *testing.T) {
	tests := []struct {
		name    string
		policy  graph.PublishPolicy
		wantErr bool
	}{
		{"never", graph.PublishPolicy{Kind: graph.PublishNever}, false},
		{"empty registry set", graph.PublishPolicy{Kind: graph.PublishRegistries}, false},
		{"public registry", graph.PublishPolicy{Kind: graph.PublishRegistries, Registries: []string{graph.PublicRegistry}}, false},
		{"private registry", graph.PublishPolicy{Kind: graph.PublishRegistries, Registries: []string{"registry.corp.example"}}, true},
		{"unrestricted", graph.PublishPolicy{Kind: graph.PublishUnrestricted}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := wsPkg("example.com/app", "modules/app")
			app.Publish = tt.policy
			g, err := graph.NewBuilder().AddPackage(app).Build()
			require.NoError(t, err)

			msgs := runPackage(t, rules.OnlyPublishToPublicRegistry{}, testProject(t, g), "example.com/app")
			if tt.wantErr {
				require.Len(t, msgs, 1)
				assert.Contains(t, msgs[0].Text, graph.PublicRegistry)
			} else {
				assert.Empty(t, msgs)
			}
		})
	}
}
