// Package config loads and validates the repolint CLI configuration.
//
// Settings come from repolint.yaml, REPOLINT_* environment variables, and
// command-line flags, with flags taking the highest precedence.
package config

import "github.com/quaylabs/repolint/pkg/lint/rules"

// Config holds all CLI configuration options.
type Config struct {
	ModulesDir           string                    `koanf:"modules_dir"`
	WorkspaceHack        string                    `koanf:"workspace_hack"`
	BannedDeps           map[string]BannedDep      `koanf:"banned_deps"`
	DirectDepDups        DirectDepDupsConfig       `koanf:"direct_dep_dups"`
	EnforcedAttributes   EnforcedAttributesConfig  `koanf:"enforced_attributes"`
	AllowedPaths         string                    `koanf:"allowed_paths"`
	WhitespaceExceptions []string                  `koanf:"whitespace_exceptions"`
	LicenseHeader        string                    `koanf:"license_header"`
	DisabledRules        []string                  `koanf:"disabled_rules"`
	OutputFormat         string                    `koanf:"output"`
	Verbose              bool                      `koanf:"verbose"`
}

// BannedDep is one banned-dependency config entry.
type BannedDep struct {
	Message string `koanf:"message"`
	Policy  string `koanf:"policy"`
}

// DirectDepDupsConfig holds options for the duplicate-dependency rule.
type DirectDepDupsConfig struct {
	Allow []string `koanf:"allow"`
}

// EnforcedAttributesConfig holds required module metadata values.
type EnforcedAttributesConfig struct {
	Authors []string `koanf:"authors"`
	License string   `koanf:"license"`
}

// Default configuration values.
const (
	DefaultModulesDir = "modules"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=plain text
)

// DefaultConfig returns the built-in defaults applied before any file, env,
// or flag values.
func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"modules_dir":   DefaultModulesDir,
		"allowed_paths": rules.DefaultAllowedPathsRegex,
		"output":        DefaultOutput,
		"verbose":       false,
	}
}

// IsDisabled reports whether a rule name is in the disabled list.
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.DisabledRules {
		if d == name {
			return true
		}
	}
	return false
}
