package rules

import (
	"strings"

	"github.com/quaylabs/repolint/pkg/lint"
)

// Comment styles per extension for the license-header check.
var (
	slashCommentExts = map[string]bool{
		"go": true, "proto": true,
		"js": true, "jsx": true, "cjs": true, "mjs": true,
		"ts": true, "tsx": true, "mts": true, "cts": true,
	}
	hashCommentExts = map[string]bool{
		"sh": true, "py": true,
	}
)

// headerCommentLines is how deep into the file the header must appear.
const headerCommentLines = 4

// LicenseHeader requires source files to open with the configured license
// header, rendered in the file type's comment style.
type LicenseHeader struct {
	lines []string
}

// NewLicenseHeader creates the rule from the header text. Blank lines in the
// header are ignored.
func NewLicenseHeader(header string) *LicenseHeader {
	var lines []string
	for _, line := range strings.Split(header, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return &LicenseHeader{lines: lines}
}

// Name implements lint.Linter.
func (l *LicenseHeader) Name() string {
	return "license-header"
}

// PreRun implements lint.PreRunner.
func (l *LicenseHeader) PreRun(ctx *lint.FilePathContext) (lint.RunStatus, error) {
	ext := ctx.Extension()
	if !slashCommentExts[ext] && !hashCommentExts[ext] {
		return lint.Skipped(lint.UnsupportedExtension(ext)), nil
	}
	return lint.Executed(), nil
}

// Run implements lint.ContentLinter.
func (l *LicenseHeader) Run(ctx *lint.ContentContext, out *lint.Formatter) (lint.RunStatus, error) {
	if len(l.lines) == 0 {
		return lint.Executed(), nil
	}

	prefix := "//"
	if hashCommentExts[ctx.File().Extension()] {
		prefix = "#"
	}

	fileLines := strings.Split(ctx.Content(), "\n")
	if len(fileLines) > 0 && strings.HasPrefix(fileLines[0], "#!") {
		fileLines = fileLines[1:]
	}

	// Collect the opening comment block, up to the search depth.
	leading := make(map[string]bool, headerCommentLines)
	for _, line := range fileLines {
		if len(leading) == headerCommentLines {
			break
		}
		if !strings.HasPrefix(line, prefix) {
			break
		}
		leading[strings.TrimSpace(strings.TrimPrefix(line, prefix))] = true
	}

	for _, want := range l.lines {
		if !leading[want] {
			out.Write(lint.LevelError, "missing license header")
			break
		}
	}

	return lint.Executed(), nil
}
