package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quaylabs/repolint/pkg/lint"
)

// NewPlaygroundCommand creates the playground command, a scratch harness
// for trying out rules against the live workspace. It exits zero unless the
// run itself fails.
func NewPlaygroundCommand() *cobra.Command {
	var dummy bool
	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Run a scratch rule bundle against the workspace",
		Long: `Run an empty rule bundle against the workspace.

Useful for checking that target enumeration works on a repository
without producing findings. --dummy adds a throwaway content rule that
reports every decoded file, which exercises the full dispatch path.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			engineCfg := lint.NewEngineConfig(cmdCtx.Workspace)
			if dummy {
				engineCfg.WithContentLinters(dummyLinter{})
			}

			results, err := engineCfg.Build().Run()
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.RenderResults(results, true)
		},
	}

	cmd.Flags().BoolVar(&dummy, "dummy", false, "Add a throwaway content rule that reports every file")

	return cmd
}

// dummyLinter reports every decoded file. Playground only.
type dummyLinter struct{}

func (dummyLinter) Name() string {
	return "dummy"
}

func (dummyLinter) Run(ctx *lint.ContentContext, out *lint.Formatter) (lint.RunStatus, error) {
	out.Write(lint.LevelWarning, fmt.Sprintf("%d bytes", len(ctx.Content())))
	return lint.Executed(), nil
}
