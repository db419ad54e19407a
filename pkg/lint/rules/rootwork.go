package rules

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
)

// RootWorkfile checks the root go.work: every tracked module must be listed,
// use directives must be sorted, and every listed directory must carry a
// tracked go.mod.
type RootWorkfile struct{}

// Name implements lint.Linter.
func (RootWorkfile) Name() string {
	return "root-workfile"
}

// PreRun implements lint.PreRunner.
func (RootWorkfile) PreRun(ctx *lint.FilePathContext) (lint.RunStatus, error) {
	if ctx.FilePath() != graph.WorkFileName {
		return lint.Skipped(lint.UnsupportedFile(ctx.FilePath())), nil
	}
	return lint.Executed(), nil
}

// Run implements lint.ContentLinter.
func (RootWorkfile) Run(ctx *lint.ContentContext, out *lint.Formatter) (lint.RunStatus, error) {
	wf, err := modfile.ParseWork(graph.WorkFileName, []byte(ctx.Content()), nil)
	if err != nil {
		out.Write(lint.LevelError, fmt.Sprintf("invalid workfile: %v", err))
		return lint.Executed(), nil
	}

	tracked, err := ctx.File().Project().Workspace().TrackedFiles()
	if err != nil {
		return lint.RunStatus{}, err
	}
	trackedMods := make(map[string]bool)
	for _, f := range tracked {
		if path.Base(f) == "go.mod" {
			trackedMods[path.Dir(f)] = true
		}
	}

	listed := make(map[string]bool, len(wf.Use))
	var prev string
	for i, use := range wf.Use {
		dir := path.Clean(strings.TrimPrefix(use.Path, "./"))
		if listed[dir] {
			out.Write(lint.LevelError, fmt.Sprintf("duplicate use directive '%s'", use.Path))
		}
		listed[dir] = true
		if i > 0 && use.Path < prev {
			out.Write(lint.LevelError, fmt.Sprintf(
				"use directives are not sorted ('%s' after '%s')", use.Path, prev))
		}
		prev = use.Path
		if !trackedMods[dir] {
			out.Write(lint.LevelError, fmt.Sprintf(
				"use directive '%s' does not point at a tracked module", use.Path))
		}
	}

	for _, dir := range sortedKeys(trackedMods) {
		if !listed[dir] {
			out.Write(lint.LevelError, fmt.Sprintf("module '%s' is not listed in %s", dir, graph.WorkFileName))
		}
	}

	return lint.Executed(), nil
}
