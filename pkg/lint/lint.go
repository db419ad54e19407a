// Package lint provides the rule-dispatch engine for workspace hygiene
// checks. Every rule implements exactly one of four target granularities
// (project, package, file path, or file content). The engine enumerates
// targets from the workspace context, invokes the configured rules, and
// aggregates their messages.
package lint

import "fmt"

// Level is the severity of a lint message.
type Level int

const (
	// LevelWarning is a non-blocking finding.
	LevelWarning Level = iota
	// LevelError is a blocking finding.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// KindVariant is the target granularity of a lint.
type KindVariant int

const (
	// KindProject targets the whole project.
	KindProject KindVariant = iota
	// KindPackage targets one workspace package.
	KindPackage
	// KindFilePath targets one tracked path.
	KindFilePath
	// KindContent targets one tracked path's decoded content.
	KindContent
)

// Kind identifies a lint target well enough to report it.
type Kind struct {
	Variant KindVariant
	// Name is the package name for package kinds.
	Name string
	// Path is the workspace path of the package, or the file path.
	Path string
}

// ProjectKind is the singleton project target.
func ProjectKind() Kind {
	return Kind{Variant: KindProject}
}

// PackageKind identifies a workspace package target.
func PackageKind(name, path string) Kind {
	return Kind{Variant: KindPackage, Name: name, Path: path}
}

// FilePathKind identifies a tracked-path target.
func FilePathKind(path string) Kind {
	return Kind{Variant: KindFilePath, Path: path}
}

// ContentKind identifies a file-content target.
func ContentKind(path string) Kind {
	return Kind{Variant: KindContent, Path: path}
}

// String renders the kind the way messages report it.
func (k Kind) String() string {
	switch k.Variant {
	case KindProject:
		return "project"
	case KindPackage:
		return fmt.Sprintf("package %s (%s)", k.Name, k.Path)
	default:
		return k.Path
	}
}

// SkipReasonKind classifies why a rule did not execute against a target.
type SkipReasonKind int

const (
	// SkipUnsupportedExtension means the rule does not handle the file's
	// extension.
	SkipUnsupportedExtension SkipReasonKind = iota
	// SkipUnsupportedFile means the rule does not apply to this path.
	SkipUnsupportedFile
	// SkipNonTextContent means the file's bytes are not valid text.
	SkipNonTextContent
	// SkipGlobExempted means a configured exception glob excluded the path.
	SkipGlobExempted
)

// SkipReason records why a (rule, target) run was skipped.
type SkipReason struct {
	Kind   SkipReasonKind
	Detail string
}

// String returns a human-readable reason.
func (r SkipReason) String() string {
	switch r.Kind {
	case SkipUnsupportedExtension:
		return fmt.Sprintf("unsupported extension %q", r.Detail)
	case SkipUnsupportedFile:
		return fmt.Sprintf("unsupported file %q", r.Detail)
	case SkipNonTextContent:
		return "non-UTF-8 content"
	case SkipGlobExempted:
		return fmt.Sprintf("excluded by glob for %q", r.Detail)
	default:
		return "unknown"
	}
}

// UnsupportedExtension is the skip reason for an unhandled extension.
func UnsupportedExtension(ext string) SkipReason {
	return SkipReason{Kind: SkipUnsupportedExtension, Detail: ext}
}

// UnsupportedFile is the skip reason for an inapplicable path.
func UnsupportedFile(path string) SkipReason {
	return SkipReason{Kind: SkipUnsupportedFile, Detail: path}
}

// NonTextContent is the skip reason for undecodable bytes.
func NonTextContent() SkipReason {
	return SkipReason{Kind: SkipNonTextContent}
}

// GlobExempted is the skip reason for a configured exception glob.
func GlobExempted(path string) SkipReason {
	return SkipReason{Kind: SkipGlobExempted, Detail: path}
}

// RunStatus is the terminal outcome of one (rule, target) pair: executed,
// or skipped with a reason.
type RunStatus struct {
	skipped bool
	reason  SkipReason
}

// Executed is the status of a rule that ran.
func Executed() RunStatus {
	return RunStatus{}
}

// Skipped is the status of a rule that did not run.
func Skipped(reason SkipReason) RunStatus {
	return RunStatus{skipped: true, reason: reason}
}

// IsSkipped reports whether the run was skipped.
func (s RunStatus) IsSkipped() bool {
	return s.skipped
}

// Reason returns the skip reason; only meaningful when IsSkipped.
func (s RunStatus) Reason() SkipReason {
	return s.reason
}

// Message is one lint finding, immutable once emitted.
type Message struct {
	Level Level
	// Rule is the emitting rule's name.
	Rule string
	Kind Kind
	Text string
}

// SkippedRun is the bookkeeping record of a skipped (rule, target) pair.
type SkippedRun struct {
	Rule   string
	Kind   Kind
	Reason SkipReason
}

// Results aggregates one engine run: the ordered message sequence plus the
// skipped-run summary.
type Results struct {
	// RunID identifies this run in logs and machine-readable output.
	RunID    string
	Messages []Message
	Skipped  []SkippedRun
	// FailedFast is set when the run stopped early after an error-level
	// message.
	FailedFast bool
}

// HasErrors reports whether any error-level message was produced.
func (r *Results) HasErrors() bool {
	for _, m := range r.Messages {
		if m.Level == LevelError {
			return true
		}
	}
	return false
}

// Counts returns the number of error- and warning-level messages.
func (r *Results) Counts() (errors, warnings int) {
	for _, m := range r.Messages {
		if m.Level == LevelError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
