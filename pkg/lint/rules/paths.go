package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quaylabs/repolint/pkg/lint"
)

// DefaultAllowedPathsRegex is the character set tracked paths must stay
// within unless a project overrides it.
const DefaultAllowedPathsRegex = `^([a-zA-Z0-9._\-/@:]|-)+$`

// AllowedPaths rejects tracked paths containing characters outside a
// configured set. Unusual characters break shell scripts and some
// filesystems, so the default set is deliberately narrow.
type AllowedPaths struct {
	re *regexp.Regexp
}

// NewAllowedPaths compiles the rule's regex. The pattern must be anchored at
// both ends so a partial match cannot pass a bad path.
func NewAllowedPaths(pattern string) (*AllowedPaths, error) {
	if !strings.HasPrefix(pattern, "^") || !strings.HasSuffix(pattern, "$") {
		return nil, fmt.Errorf("allowed-paths regex %q must be anchored with ^ and $", pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling allowed-paths regex: %w", err)
	}
	return &AllowedPaths{re: re}, nil
}

// Name implements lint.Linter.
func (a *AllowedPaths) Name() string {
	return "allowed-paths"
}

// Run implements lint.FilePathLinter.
func (a *AllowedPaths) Run(ctx *lint.FilePathContext, out *lint.Formatter) (lint.RunStatus, error) {
	if !a.re.MatchString(ctx.FilePath()) {
		out.Write(lint.LevelError, fmt.Sprintf(
			"path contains characters outside the allowed set %s", a.re.String()))
	}
	return lint.Executed(), nil
}
