package lint

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/quaylabs/repolint/pkg/workspace"
)

// EngineConfig assembles an Engine: the ordered rule lists for each of the
// four variants, the fail-fast flag, and the workspace context.
type EngineConfig struct {
	ws         *workspace.Context
	project    []ProjectLinter
	packages   []PackageLinter
	filePaths  []FilePathLinter
	content    []ContentLinter
	failFast   bool
	fileFilter map[string]struct{}
}

// NewEngineConfig starts an engine configuration over a workspace context.
func NewEngineConfig(ws *workspace.Context) *EngineConfig {
	return &EngineConfig{ws: ws}
}

// WithProjectLinters sets the project-scoped rules.
func (c *EngineConfig) WithProjectLinters(linters ...ProjectLinter) *EngineConfig {
	c.project = append(c.project, linters...)
	return c
}

// WithPackageLinters sets the package-scoped rules.
func (c *EngineConfig) WithPackageLinters(linters ...PackageLinter) *EngineConfig {
	c.packages = append(c.packages, linters...)
	return c
}

// WithFilePathLinters sets the file-path rules.
func (c *EngineConfig) WithFilePathLinters(linters ...FilePathLinter) *EngineConfig {
	c.filePaths = append(c.filePaths, linters...)
	return c
}

// WithContentLinters sets the content rules.
func (c *EngineConfig) WithContentLinters(linters ...ContentLinter) *EngineConfig {
	c.content = append(c.content, linters...)
	return c
}

// FailFast makes the engine stop after the first rule invocation that
// emits an error-level message.
func (c *EngineConfig) FailFast(failFast bool) *EngineConfig {
	c.failFast = failFast
	return c
}

// WithFileFilter restricts file-path and content targets to the given
// root-relative paths.
func (c *EngineConfig) WithFileFilter(paths []string) *EngineConfig {
	c.fileFilter = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		c.fileFilter[p] = struct{}{}
	}
	return c
}

// Build finalizes the configuration.
func (c *EngineConfig) Build() *Engine {
	return &Engine{cfg: *c}
}

// Engine runs the configured rules over the targets enumerated from the
// workspace context: project first, then packages, file paths, and file
// contents. Execution is sequential; fail-fast is checked only at rule
// invocation boundaries.
type Engine struct {
	cfg EngineConfig
}

// Run executes the full lint pass and returns the aggregated results. A
// failed target-context build (graph resolution, file read) aborts the run
// with a system error; rule findings never do.
func (e *Engine) Run() (*Results, error) {
	results := &Results{RunID: uuid.NewString()}
	projectCtx := NewProjectContext(e.cfg.ws)

	for _, linter := range e.cfg.project {
		out := NewFormatter(linter.Name(), ProjectKind(), results)
		status, err := linter.Run(projectCtx, out)
		if err != nil {
			return nil, fmt.Errorf("project lint %s: %w", linter.Name(), err)
		}
		recordSkip(results, linter.Name(), ProjectKind(), status)
		if e.stop(results, out) {
			return results, nil
		}
	}

	if len(e.cfg.packages) > 0 {
		g, err := e.cfg.ws.PackageGraph()
		if err != nil {
			return nil, err
		}
		for _, pkg := range g.Workspace() {
			pkgCtx := NewPackageContext(projectCtx, g, pkg)
			for _, linter := range e.cfg.packages {
				out := NewFormatter(linter.Name(), pkgCtx.kind(), results)
				status, err := linter.Run(pkgCtx, out)
				if err != nil {
					return nil, fmt.Errorf("package lint %s on %s: %w", linter.Name(), pkg.Name, err)
				}
				recordSkip(results, linter.Name(), pkgCtx.kind(), status)
				if e.stop(results, out) {
					return results, nil
				}
			}
		}
	}

	if len(e.cfg.filePaths) == 0 && len(e.cfg.content) == 0 {
		return results, nil
	}
	files, err := e.cfg.ws.TrackedFiles()
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if e.excluded(file) {
			continue
		}
		fileCtx := NewFilePathContext(projectCtx, file)
		for _, linter := range e.cfg.filePaths {
			kind := FilePathKind(file)
			if status, err := preRun(linter, fileCtx); err != nil {
				return nil, fmt.Errorf("file path lint %s on %s: %w", linter.Name(), file, err)
			} else if status.IsSkipped() {
				results.Skipped = append(results.Skipped, SkippedRun{Rule: linter.Name(), Kind: kind, Reason: status.Reason()})
				continue
			}
			out := NewFormatter(linter.Name(), kind, results)
			status, err := linter.Run(fileCtx, out)
			if err != nil {
				return nil, fmt.Errorf("file path lint %s on %s: %w", linter.Name(), file, err)
			}
			recordSkip(results, linter.Name(), kind, status)
			if e.stop(results, out) {
				return results, nil
			}
		}
	}

	if len(e.cfg.content) == 0 {
		return results, nil
	}
	for _, file := range files {
		if e.excluded(file) {
			continue
		}
		fileCtx := NewFilePathContext(projectCtx, file)
		kind := ContentKind(file)

		// Consult pre-run hooks before reading the file at all.
		var pending []ContentLinter
		for _, linter := range e.cfg.content {
			if status, err := preRun(linter, fileCtx); err != nil {
				return nil, fmt.Errorf("content lint %s on %s: %w", linter.Name(), file, err)
			} else if status.IsSkipped() {
				results.Skipped = append(results.Skipped, SkippedRun{Rule: linter.Name(), Kind: kind, Reason: status.Reason()})
			} else {
				pending = append(pending, linter)
			}
		}
		if len(pending) == 0 {
			continue
		}

		data, err := os.ReadFile(fileCtx.FullPath())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		if !utf8.Valid(data) {
			for _, linter := range pending {
				results.Skipped = append(results.Skipped, SkippedRun{Rule: linter.Name(), Kind: kind, Reason: NonTextContent()})
			}
			continue
		}

		contentCtx := NewContentContext(fileCtx, string(data))
		for _, linter := range pending {
			out := NewFormatter(linter.Name(), kind, results)
			status, err := linter.Run(contentCtx, out)
			if err != nil {
				return nil, fmt.Errorf("content lint %s on %s: %w", linter.Name(), file, err)
			}
			recordSkip(results, linter.Name(), kind, status)
			if e.stop(results, out) {
				return results, nil
			}
		}
	}

	return results, nil
}

func (e *Engine) stop(results *Results, out *Formatter) bool {
	if e.cfg.failFast && out.wroteError() {
		results.FailedFast = true
		return true
	}
	return false
}

func (e *Engine) excluded(file string) bool {
	if e.cfg.fileFilter == nil {
		return false
	}
	_, ok := e.cfg.fileFilter[file]
	return !ok
}

func preRun(linter Linter, ctx *FilePathContext) (RunStatus, error) {
	if p, ok := linter.(PreRunner); ok {
		return p.PreRun(ctx)
	}
	return Executed(), nil
}

func recordSkip(results *Results, rule string, kind Kind, status RunStatus) {
	if status.IsSkipped() {
		results.Skipped = append(results.Skipped, SkippedRun{Rule: rule, Kind: kind, Reason: status.Reason()})
	}
}
