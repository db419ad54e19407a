package lint

// Formatter is the shared sink rules emit messages through. Messages are
// tagged automatically with the emitting rule's name and the current
// target's kind.
type Formatter struct {
	rule    string
	kind    Kind
	results *Results
	errors  int
}

// NewFormatter creates a formatter bound to one rule invocation.
func NewFormatter(rule string, kind Kind, results *Results) *Formatter {
	return &Formatter{rule: rule, kind: kind, results: results}
}

// Write emits a message against the current target.
func (f *Formatter) Write(level Level, text string) {
	f.WriteKind(f.kind, level, text)
}

// WriteKind emits a message against an explicit target kind. Project rules
// use this to report package-level findings.
func (f *Formatter) WriteKind(kind Kind, level Level, text string) {
	if level == LevelError {
		f.errors++
	}
	f.results.Messages = append(f.results.Messages, Message{
		Level: level,
		Rule:  f.rule,
		Kind:  kind,
		Text:  text,
	})
}

// wroteError reports whether this invocation emitted an error-level
// message; the engine's fail-fast check reads it at invocation boundaries.
func (f *Formatter) wroteError() bool {
	return f.errors > 0
}
