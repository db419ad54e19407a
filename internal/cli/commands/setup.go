// Package commands implements the repolint subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quaylabs/repolint/internal/cli/config"
	"github.com/quaylabs/repolint/internal/cli/output"
	"github.com/quaylabs/repolint/pkg/lint"
	"github.com/quaylabs/repolint/pkg/lint/rules"
	"github.com/quaylabs/repolint/pkg/workspace"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Workspace *workspace.Context
}

// NewCommandContext creates a CommandContext with a workspace context
// anchored at the enclosing git repository.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutWorkspace(cmd)

	ws, err := workspace.NewContext(workspace.WithWorkspaceHack(cmdCtx.Cfg.WorkspaceHack))
	if err != nil {
		return nil, err
	}
	cmdCtx.Workspace = ws
	return cmdCtx, nil
}

// NewCommandContextWithoutWorkspace creates a CommandContext for commands
// that do not touch the repository.
func NewCommandContextWithoutWorkspace(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, falling back to environment
// variables when no load has happened (help paths, tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	modulesDir := os.Getenv("REPOLINT_MODULES_DIR")
	if modulesDir == "" {
		modulesDir = config.DefaultModulesDir
	}
	outputFormat := os.Getenv("REPOLINT_OUTPUT")
	if outputFormat == "" {
		outputFormat = config.DefaultOutput
	}

	return &config.Config{
		ModulesDir:    modulesDir,
		AllowedPaths:  rules.DefaultAllowedPathsRegex,
		OutputFormat:  outputFormat,
		WorkspaceHack: os.Getenv("REPOLINT_WORKSPACE_HACK"),
		Verbose:       os.Getenv("REPOLINT_VERBOSE") == "true",
	}
}

// linterBundle is the configured rule set, grouped by variant.
type linterBundle struct {
	project   []lint.ProjectLinter
	packages  []lint.PackageLinter
	filePaths []lint.FilePathLinter
	content   []lint.ContentLinter
}

// names returns every rule name in dispatch order.
func (b *linterBundle) names() []string {
	var names []string
	for _, l := range b.project {
		names = append(names, l.Name())
	}
	for _, l := range b.packages {
		names = append(names, l.Name())
	}
	for _, l := range b.filePaths {
		names = append(names, l.Name())
	}
	for _, l := range b.content {
		names = append(names, l.Name())
	}
	return names
}

// buildLinters assembles the full rule bundle from config, minus the
// disabled rules. Config validation has already vetted the regex, globs,
// and policies, so the constructors here cannot fail on vetted input.
func buildLinters(cfg *config.Config) (*linterBundle, error) {
	bundle := &linterBundle{}

	bannedDeps := make(map[string]rules.BannedDepConfig, len(cfg.BannedDeps))
	for name, entry := range cfg.BannedDeps {
		policy := rules.BanAlways
		if entry.Policy != "" {
			var err error
			policy, err = rules.ParseBannedDepPolicy(entry.Policy)
			if err != nil {
				return nil, err
			}
		}
		bannedDeps[name] = rules.BannedDepConfig{Message: entry.Message, Policy: policy}
	}

	allowedPaths, err := rules.NewAllowedPaths(cfg.AllowedPaths)
	if err != nil {
		return nil, err
	}
	whitespaceExceptions, err := rules.NewGlobSet(cfg.WhitespaceExceptions)
	if err != nil {
		return nil, err
	}

	project := []lint.ProjectLinter{
		rules.NewBannedDeps(bannedDeps),
		rules.NewDirectDepDups(rules.DirectDepDupsConfig{Allow: cfg.DirectDepDups.Allow}),
		rules.DirectDuplicateGitDependencies{},
	}
	packages := []lint.PackageLinter{
		rules.UnpublishedPackagesOnlyUsePathDependencies{},
		rules.PublishedPackagesDontDependOnUnpublishedPackages{},
		rules.OnlyPublishToPublicRegistry{},
		rules.NewModulesInModulesDirectory(cfg.ModulesDir),
		rules.NewModulesOnlyInModulesDirectory(cfg.ModulesDir),
		rules.ModuleNamesPaths{},
		rules.IrrelevantToolDeps{},
		rules.NewEnforcedAttributes(rules.EnforcedAttributesConfig{
			Authors: cfg.EnforcedAttributes.Authors,
			License: cfg.EnforcedAttributes.License,
		}),
	}
	filePaths := []lint.FilePathLinter{
		allowedPaths,
	}
	content := []lint.ContentLinter{
		rules.NewLicenseHeader(cfg.LicenseHeader),
		rules.NewEofNewline(whitespaceExceptions),
		rules.NewTrailingWhitespace(whitespaceExceptions),
		rules.RootWorkfile{},
	}

	for _, l := range project {
		if !cfg.IsDisabled(l.Name()) {
			bundle.project = append(bundle.project, l)
		}
	}
	for _, l := range packages {
		if !cfg.IsDisabled(l.Name()) {
			bundle.packages = append(bundle.packages, l)
		}
	}
	for _, l := range filePaths {
		if !cfg.IsDisabled(l.Name()) {
			bundle.filePaths = append(bundle.filePaths, l)
		}
	}
	for _, l := range content {
		if !cfg.IsDisabled(l.Name()) {
			bundle.content = append(bundle.content, l)
		}
	}
	return bundle, nil
}
