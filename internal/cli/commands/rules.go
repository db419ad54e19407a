package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quaylabs/repolint/internal/cli/output"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the configured rule bundle",
		Long: `List every rule in the configured bundle, grouped by the target
granularity it runs at. Disabled rules are omitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutWorkspace(cmd)
			bundle, err := buildLinters(cmdCtx.Cfg)
			if err != nil {
				return err
			}

			if cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
				return cmdCtx.Renderer.JSON(map[string][]string{"rules": bundle.names()})
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Rule", "Variant"})
			for _, l := range bundle.project {
				t.AppendRow(table.Row{l.Name(), "project"})
			}
			for _, l := range bundle.packages {
				t.AppendRow(table.Row{l.Name(), "package"})
			}
			for _, l := range bundle.filePaths {
				t.AppendRow(table.Row{l.Name(), "file path"})
			}
			for _, l := range bundle.content {
				t.AppendRow(table.Row{l.Name(), "content"})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
