package rules

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/quaylabs/repolint/pkg/graph"
	"github.com/quaylabs/repolint/pkg/lint"
)

// ModulesInModulesDirectory requires every workspace module kept under the
// modules directory to sit directly at <dir>/<short name>.
type ModulesInModulesDirectory struct {
	dir string
}

// NewModulesInModulesDirectory creates the rule for the given directory.
func NewModulesInModulesDirectory(dir string) *ModulesInModulesDirectory {
	return &ModulesInModulesDirectory{dir: dir}
}

// Name implements lint.Linter.
func (m *ModulesInModulesDirectory) Name() string {
	return "modules-in-modules-directory"
}

// Run implements lint.PackageLinter.
func (m *ModulesInModulesDirectory) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()
	if pkg.Path == "." || !strings.HasPrefix(pkg.Path, m.dir+"/") {
		return lint.Executed(), nil
	}

	want := path.Join(m.dir, pkg.ShortName())
	if pkg.Path != want {
		out.Write(lint.LevelError, fmt.Sprintf(
			"module at '%s' should live at '%s' (flat layout, directory named after the module)",
			pkg.Path, want))
	}

	return lint.Executed(), nil
}

// ModulesOnlyInModulesDirectory requires every non-root workspace module to
// live under the modules directory.
type ModulesOnlyInModulesDirectory struct {
	dir string
}

// NewModulesOnlyInModulesDirectory creates the rule for the given directory.
func NewModulesOnlyInModulesDirectory(dir string) *ModulesOnlyInModulesDirectory {
	return &ModulesOnlyInModulesDirectory{dir: dir}
}

// Name implements lint.Linter.
func (m *ModulesOnlyInModulesDirectory) Name() string {
	return "modules-only-in-modules-directory"
}

// Run implements lint.PackageLinter.
func (m *ModulesOnlyInModulesDirectory) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()
	if pkg.Path == "." {
		return lint.Executed(), nil
	}

	if !strings.HasPrefix(pkg.Path, m.dir+"/") {
		out.Write(lint.LevelError, fmt.Sprintf(
			"workspace module at '%s' is outside the '%s' directory", pkg.Path, m.dir))
	}

	return lint.Executed(), nil
}

// ModuleNamesPaths rejects underscores in module short names, workspace
// paths, and build-target names. Hyphens separate words in this repository.
type ModuleNamesPaths struct{}

// Name implements lint.Linter.
func (ModuleNamesPaths) Name() string {
	return "module-names-paths"
}

// Run implements lint.PackageLinter.
func (ModuleNamesPaths) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()

	if strings.Contains(pkg.ShortName(), "_") {
		out.Write(lint.LevelError, fmt.Sprintf(
			"module name '%s' contains an underscore; use hyphens instead", pkg.ShortName()))
	}
	if strings.Contains(pkg.Path, "_") {
		out.Write(lint.LevelError, fmt.Sprintf(
			"module path '%s' contains an underscore; use hyphens instead", pkg.Path))
	}
	for _, target := range pkg.BuildTargets {
		if !strings.Contains(target.Name, "_") {
			continue
		}
		// A target named after its own directory is the directory's problem,
		// already reported through the path check.
		if target.Name == path.Base(target.Path) {
			continue
		}
		out.Write(lint.LevelError, fmt.Sprintf(
			"build target '%s' contains an underscore; use hyphens instead", target.Name))
	}

	return lint.Executed(), nil
}

// IrrelevantToolDeps flags modules that declare tool dependencies without a
// go:generate directive anywhere in their tree. Tool requirements exist to
// pin generator binaries; without a generate step they only bloat the module
// graph.
type IrrelevantToolDeps struct{}

// Name implements lint.Linter.
func (IrrelevantToolDeps) Name() string {
	return "irrelevant-tool-deps"
}

// Run implements lint.PackageLinter.
func (IrrelevantToolDeps) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()
	if pkg.HasGenerate {
		return lint.Executed(), nil
	}

	var tools []string
	for _, link := range ctx.Graph().DirectLinks(pkg) {
		if link.Kind == graph.LinkTool {
			tools = append(tools, link.To.Name)
		}
	}
	if len(tools) > 0 {
		sort.Strings(tools)
		out.Write(lint.LevelWarning, fmt.Sprintf(
			"module declares tool dependencies (%s) but has no go:generate directive",
			strings.Join(tools, ", ")))
	}

	return lint.Executed(), nil
}

// EnforcedAttributesConfig lists the metadata every workspace module must
// carry.
type EnforcedAttributesConfig struct {
	Authors []string
	License string
}

// EnforcedAttributes checks required module metadata against the configured
// values.
type EnforcedAttributes struct {
	config EnforcedAttributesConfig
}

// NewEnforcedAttributes creates the rule from its config.
func NewEnforcedAttributes(config EnforcedAttributesConfig) *EnforcedAttributes {
	return &EnforcedAttributes{config: config}
}

// Name implements lint.Linter.
func (e *EnforcedAttributes) Name() string {
	return "enforced-attributes"
}

// Run implements lint.PackageLinter.
func (e *EnforcedAttributes) Run(ctx *lint.PackageContext, out *lint.Formatter) (lint.RunStatus, error) {
	pkg := ctx.Package()

	if len(e.config.Authors) > 0 && !equalStrings(pkg.Authors, e.config.Authors) {
		out.Write(lint.LevelError, fmt.Sprintf(
			"authors must be [%s] in %s", strings.Join(e.config.Authors, ", "), graph.MetaFileName))
	}
	if e.config.License != "" && pkg.License != e.config.License {
		out.Write(lint.LevelError, fmt.Sprintf(
			"license must be '%s' in %s", e.config.License, graph.MetaFileName))
	}

	return lint.Executed(), nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
