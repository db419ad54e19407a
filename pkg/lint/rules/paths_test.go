package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
	"github.com/quaylabs/repolint/pkg/lint/rules"
)

func emptyGraph(t *testing.T) *graph.PackageGraph {
	t.Helper()
	g, err := graph.NewBuilder().Build()
	require.NoError(t, err)
	return g
}

func TestNewAllowedPaths_RequiresAnchors(t *testing.T) {
	for _, pattern := range []string{`[a-z]+$`, `^[a-z]+`, `[a-z]+`} {
		_, err := rules.NewAllowedPaths(pattern)
		require.Error(t, err, pattern)
		assert.Contains(t, err.Error(), "anchored")
	}

	_, err := rules.NewAllowedPaths(`^[a-z]+$`)
	require.NoError(t, err)
}

func TestNewAllowedPaths_BadRegex(t *testing.T) {
	_, err := rules.NewAllowedPaths(`^[$`)
	require.Error(t, err)
}

func TestAllowedPaths_DefaultSet(t *testing.T) {
	rule, err := rules.NewAllowedPaths(rules.DefaultAllowedPathsRegex)
	require.NoError(t, err)
	project := testProject(t, emptyGraph(t))

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"cmd/repolint/main.go", false},
		{"docs/design-notes.md", false},
		{"pkg/@scoped/file_v2.txt", false},
		{"has space.txt", true},
		{"emoji-\U0001F600.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			results := &lint.Results{}
			out := lint.NewFormatter(rule.Name(), lint.FilePathKind(tt.path), results)
			status, err := rule.Run(lint.NewFilePathContext(project, tt.path), out)
			require.NoError(t, err)
			require.False(t, status.IsSkipped())
			if tt.wantErr {
				require.Len(t, results.Messages, 1)
				assert.Contains(t, results.Messages[0].Text, "allowed set")
			} else {
				assert.Empty(t, results.Messages)
			}
		})
	}
}
