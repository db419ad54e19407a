package config

import (
	"fmt"

	"github.com/quaylabs/repolint/pkg/lint/rules"
)

var validOutputs = map[string]bool{"auto": true, "text": true, "json": true}

// Validate checks the loaded configuration. Bad regexes, globs, policies,
// and output modes are configuration errors, not lint findings.
func (c *Config) Validate() error {
	if c.ModulesDir == "" {
		return fmt.Errorf("modules_dir must not be empty")
	}
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("output must be one of auto, text, json (got %q)", c.OutputFormat)
	}

	if _, err := rules.NewAllowedPaths(c.AllowedPaths); err != nil {
		return fmt.Errorf("allowed_paths: %w", err)
	}
	if _, err := rules.NewGlobSet(c.WhitespaceExceptions); err != nil {
		return fmt.Errorf("whitespace_exceptions: %w", err)
	}
	for name, banned := range c.BannedDeps {
		if banned.Policy == "" {
			continue // defaults to always
		}
		if _, err := rules.ParseBannedDepPolicy(banned.Policy); err != nil {
			return fmt.Errorf("banned_deps[%s]: %w", name, err)
		}
	}

	return nil
}
