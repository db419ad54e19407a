package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quaylabs/repolint/pkg/lint"
)

// GlobSet is a compiled list of path globs. Patterns match whole
// slash-separated paths; "**" matches any number of segments.
type GlobSet struct {
	patterns []string
}

// NewGlobSet validates and compiles the patterns.
func NewGlobSet(patterns []string) (*GlobSet, error) {
	for _, p := range patterns {
		// Validate the per-segment syntax up front so Match can't fail later.
		for _, seg := range strings.Split(p, "/") {
			if seg == "**" {
				continue
			}
			if _, err := filepath.Match(seg, ""); err != nil {
				return nil, fmt.Errorf("invalid glob %q: %w", p, err)
			}
		}
	}
	return &GlobSet{patterns: patterns}, nil
}

// Match reports whether any pattern matches the path.
func (g *GlobSet) Match(path string) bool {
	segs := strings.Split(path, "/")
	for _, p := range g.patterns {
		if matchSegments(strings.Split(p, "/"), segs) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		// Try consuming zero or more leading segments.
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, _ := filepath.Match(pattern[0], segs[0])
	if !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}

// EofNewline requires non-empty text files to end with exactly one newline.
type EofNewline struct {
	exceptions *GlobSet
}

// NewEofNewline creates the rule; exceptions may be nil.
func NewEofNewline(exceptions *GlobSet) *EofNewline {
	return &EofNewline{exceptions: exceptions}
}

// Name implements lint.Linter.
func (e *EofNewline) Name() string {
	return "eof-newline"
}

// PreRun implements lint.PreRunner.
func (e *EofNewline) PreRun(ctx *lint.FilePathContext) (lint.RunStatus, error) {
	if e.exceptions != nil && e.exceptions.Match(ctx.FilePath()) {
		return lint.Skipped(lint.GlobExempted(ctx.FilePath())), nil
	}
	return lint.Executed(), nil
}

// Run implements lint.ContentLinter.
func (e *EofNewline) Run(ctx *lint.ContentContext, out *lint.Formatter) (lint.RunStatus, error) {
	content := ctx.Content()
	if content == "" {
		return lint.Executed(), nil
	}
	if !strings.HasSuffix(content, "\n") {
		out.Write(lint.LevelError, "missing newline at end of file")
	}
	return lint.Executed(), nil
}

// TrailingWhitespace rejects trailing spaces and tabs on any line, plus
// trailing blank lines at end of file.
type TrailingWhitespace struct {
	exceptions *GlobSet
}

// NewTrailingWhitespace creates the rule; exceptions may be nil.
func NewTrailingWhitespace(exceptions *GlobSet) *TrailingWhitespace {
	return &TrailingWhitespace{exceptions: exceptions}
}

// Name implements lint.Linter.
func (t *TrailingWhitespace) Name() string {
	return "trailing-whitespace"
}

// PreRun implements lint.PreRunner.
func (t *TrailingWhitespace) PreRun(ctx *lint.FilePathContext) (lint.RunStatus, error) {
	if t.exceptions != nil && t.exceptions.Match(ctx.FilePath()) {
		return lint.Skipped(lint.GlobExempted(ctx.FilePath())), nil
	}
	return lint.Executed(), nil
}

// Run implements lint.ContentLinter.
func (t *TrailingWhitespace) Run(ctx *lint.ContentContext, out *lint.Formatter) (lint.RunStatus, error) {
	content := ctx.Content()

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed != line {
			out.Write(lint.LevelError, fmt.Sprintf("trailing whitespace on line %d", i+1))
		}
	}
	if strings.HasSuffix(content, "\n\n") {
		out.Write(lint.LevelError, "trailing blank lines at end of file")
	}

	return lint.Executed(), nil
}
