package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultModulesDir, cfg.ModulesDir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.NotEmpty(t, cfg.AllowedPaths)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repolint.yaml"), []byte(`modules_dir: libs
workspace_hack: depshack
banned_deps:
  example.com/bad:
    message: use example.com/good
    policy: direct
direct_dep_dups:
  allow: [github.com/google/uuid]
whitespace_exceptions: ["**/*.md"]
disabled_rules: [license-header]
output: text
`), 0o644))
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "libs", cfg.ModulesDir)
	assert.Equal(t, "depshack", cfg.WorkspaceHack)
	assert.Equal(t, "text", cfg.OutputFormat)
	require.Contains(t, cfg.BannedDeps, "example.com/bad")
	assert.Equal(t, "use example.com/good", cfg.BannedDeps["example.com/bad"].Message)
	assert.Equal(t, "direct", cfg.BannedDeps["example.com/bad"].Policy)
	assert.Equal(t, []string{"github.com/google/uuid"}, cfg.DirectDepDups.Allow)
	assert.True(t, cfg.IsDisabled("license-header"))
	assert.False(t, cfg.IsDisabled("banned-deps"))
	assert.Equal(t, "repolint.yaml", GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repolint.yaml"), []byte("modules_dir: libs\n"), 0o644))
	chdir(t, dir)
	t.Setenv("REPOLINT_MODULES_DIR", "packages")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "packages", cfg.ModulesDir)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())
	t.Setenv("REPOLINT_MODULES_DIR", "packages")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("modules-dir", "", "")
	require.NoError(t, flags.Set("modules-dir", "libs"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "libs", cfg.ModulesDir)
}

func TestLoadConfig_UnchangedFlagIgnored(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("modules-dir", "", "")

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultModulesDir, cfg.ModulesDir)
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{"unanchored regex", "allowed_paths: \"[a-z]+\"\n", "anchored"},
		{"bad glob", "whitespace_exceptions: [\"[unclosed\"]\n", "whitespace_exceptions"},
		{"unknown policy", "banned_deps:\n  example.com/x:\n    message: no\n    policy: sometimes\n", "banned-dep policy"},
		{"bad output", "output: xml\n", "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "repolint.yaml"), []byte(tt.yaml), 0o644))
			chdir(t, dir)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
