// Package output renders lint results for terminals, pipes, and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/quaylabs/repolint/pkg/lint"
)

// Mode is the output format.
type Mode string

const (
	// ModeAuto picks text with styling on a terminal, plain text otherwise.
	ModeAuto Mode = "auto"
	// ModeText is the line-oriented human format.
	ModeText Mode = "text"
	// ModeJSON is the machine-readable format.
	ModeJSON Mode = "json"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
}

func newStyles(colored bool) *Styles {
	if !colored {
		s := lipgloss.NewStyle()
		return &Styles{Error: s, Warning: s, Bold: s, Muted: s, Success: s}
	}
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer. ModeAuto resolves against the out writer:
// a terminal gets styled text, anything else plain text.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	colored := false
	if mode == ModeAuto || mode == ModeText {
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) &&
			termenv.EnvColorProfile() != termenv.Ascii {
			colored = true
		}
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: newStyles(colored)}
}

// EffectiveMode resolves ModeAuto to the concrete mode in use.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Println writes a line.
func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.out, s)
}

// JSON encodes v to the output writer with indentation.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success writes a success message in text modes.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() != ModeJSON {
		r.Println(r.styles.Success.Render(msg))
	}
}

// lintMessage is the JSON shape of one finding.
type lintMessage struct {
	Level   string `json:"level"`
	Rule    string `json:"rule"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// lintSkip is the JSON shape of one skipped run.
type lintSkip struct {
	Rule   string `json:"rule"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// lintOutput is the JSON shape of a full run.
type lintOutput struct {
	RunID      string        `json:"run_id"`
	Messages   []lintMessage `json:"messages"`
	Skipped    []lintSkip    `json:"skipped,omitempty"`
	FailedFast bool          `json:"failed_fast,omitempty"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
}

// RenderResults writes a lint run. Text mode emits one
// "[level] [rule] [kind]: message" block per finding, each followed by a
// blank line, then a summary when errors occurred. showSkipped adds the
// skipped-run bookkeeping to the output.
func (r *Renderer) RenderResults(results *lint.Results, showSkipped bool) error {
	if r.EffectiveMode() == ModeJSON {
		return r.renderJSON(results, showSkipped)
	}

	for _, m := range results.Messages {
		level := m.Level.String()
		styled := level
		switch m.Level {
		case lint.LevelError:
			styled = r.styles.Error.Render(level)
		case lint.LevelWarning:
			styled = r.styles.Warning.Render(level)
		}
		r.Printf("[%s] [%s] [%s]: %s\n\n", styled, m.Rule, m.Kind, strings.TrimRight(m.Text, "\n"))
	}

	if showSkipped && len(results.Skipped) > 0 {
		for _, s := range results.Skipped {
			r.Println(r.styles.Muted.Render(
				fmt.Sprintf("skipped [%s] [%s]: %s", s.Rule, s.Kind, s.Reason)))
		}
		r.Println("")
	}

	if errors, warnings := results.Counts(); errors > 0 {
		summary := fmt.Sprintf("Summary: %d errors, %d warnings", errors, warnings)
		if results.FailedFast {
			summary += " (stopped at first error)"
		}
		r.Println(r.styles.Bold.Render(summary))
	}
	return nil
}

func (r *Renderer) renderJSON(results *lint.Results, showSkipped bool) error {
	out := lintOutput{
		RunID:      results.RunID,
		Messages:   []lintMessage{},
		FailedFast: results.FailedFast,
	}
	for _, m := range results.Messages {
		out.Messages = append(out.Messages, lintMessage{
			Level:   m.Level.String(),
			Rule:    m.Rule,
			Kind:    m.Kind.String(),
			Message: m.Text,
		})
	}
	if showSkipped {
		for _, s := range results.Skipped {
			out.Skipped = append(out.Skipped, lintSkip{
				Rule:   s.Rule,
				Kind:   s.Kind.String(),
				Reason: s.Reason.String(),
			})
		}
	}
	out.Errors, out.Warnings = results.Counts()
	return r.JSON(out)
}
