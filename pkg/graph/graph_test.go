package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	g, err := NewBuilder().
		AddPackage(&Package{Name: "example.com/app", Version: "v0.0.0", InWorkspace: true, Path: "."}).
		AddPackage(&Package{Name: "example.com/lib", Version: "v1.2.0"}).
		AddPackage(&Package{Name: "example.com/lib", Version: "v1.10.0"}).
		AddLink(Key("example.com/app", "v0.0.0"), Key("example.com/lib", "v1.2.0"), "v1.2.0", LinkNormal, Resolution{}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Workspace(), 1)
	assert.Len(t, g.PackagesNamed("example.com/lib"), 2)
}

func TestBuilder_DuplicatePackage(t *testing.T) {
	_, err := NewBuilder().
		AddPackage(&Package{Name: "example.com/lib", Version: "v1.0.0"}).
		AddPackage(&Package{Name: "example.com/lib", Version: "v1.0.0"}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate package")
}

func TestBuilder_MissingLinkEndpoint(t *testing.T) {
	_, err := NewBuilder().
		AddPackage(&Package{Name: "example.com/app", Version: "v0.0.0"}).
		AddLink(Key("example.com/app", "v0.0.0"), Key("example.com/ghost", "v1.0.0"), "v1.0.0", LinkNormal, Resolution{}).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestPackageGraph_DeterministicOrder(t *testing.T) {
	// Insertion order differs from the expected output order on purpose.
	g, err := NewBuilder().
		AddPackage(&Package{Name: "example.com/zeta", Version: "v1.0.0"}).
		AddPackage(&Package{Name: "example.com/alpha", Version: "v2.0.0"}).
		AddPackage(&Package{Name: "example.com/alpha", Version: "v1.0.0"}).
		Build()
	require.NoError(t, err)

	var got []string
	for _, p := range g.Packages() {
		got = append(got, Key(p.Name, p.Version))
	}
	assert.Equal(t, []string{
		"example.com/alpha@v1.0.0",
		"example.com/alpha@v2.0.0",
		"example.com/zeta@v1.0.0",
	}, got)
}

func TestPackageGraph_LinkOrderAndReverse(t *testing.T) {
	appKey := Key("example.com/app", "v0.0.0")
	g, err := NewBuilder().
		AddPackage(&Package{Name: "example.com/app", Version: "v0.0.0", InWorkspace: true}).
		AddPackage(&Package{Name: "example.com/b", Version: "v1.0.0"}).
		AddPackage(&Package{Name: "example.com/a", Version: "v1.0.0"}).
		AddLink(appKey, Key("example.com/b", "v1.0.0"), "v1.0.0", LinkNormal, Resolution{}).
		AddLink(appKey, Key("example.com/a", "v1.0.0"), "v1.0.0", LinkNormal, Resolution{}).
		Build()
	require.NoError(t, err)

	app := g.Workspace()[0]
	links := g.DirectLinks(app)
	require.Len(t, links, 2)
	assert.Equal(t, "example.com/a", links[0].To.Name)
	assert.Equal(t, "example.com/b", links[1].To.Name)

	a := g.PackagesNamed("example.com/a")[0]
	reverse := g.ReverseDirectLinks(a)
	require.Len(t, reverse, 1)
	assert.Equal(t, "example.com/app", reverse[0].From.Name)
}

func TestPublishPolicy_IsNever(t *testing.T) {
	tests := []struct {
		name   string
		policy PublishPolicy
		want   bool
	}{
		{"unrestricted", PublishPolicy{Kind: PublishUnrestricted}, false},
		{"never", PublishPolicy{Kind: PublishNever}, true},
		{"empty registry set", PublishPolicy{Kind: PublishRegistries}, true},
		{"public registry", PublishPolicy{Kind: PublishRegistries, Registries: []string{PublicRegistry}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.IsNever())
		})
	}
}

func TestPackage_ShortName(t *testing.T) {
	p := &Package{Name: "example.com/org/widgets"}
	assert.Equal(t, "widgets", p.ShortName())

	bare := &Package{Name: "widgets"}
	assert.Equal(t, "widgets", bare.ShortName())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"v1.2.0", "v1.10.0", -1},
		{"v1.10.0", "v1.2.0", 1},
		{"v1.0.0", "v1.0.0", 0},
		// Non-semver falls back to lexical order.
		{"abc", "abd", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
