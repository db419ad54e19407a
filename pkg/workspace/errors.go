package workspace

import (
	"errors"
	"fmt"
	"strings"
)

// System errors abort a run entirely; they are never reported as lint
// messages.
var (
	// ErrNotRepository means the process was started outside a git
	// working copy.
	ErrNotRepository = errors.New("not inside a git repository; repolint must be run from a working copy")
)

// ExecError is a version-control command that exited non-zero. It carries
// the attempted command so callers never see silent partial data.
type ExecError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// NonTextOutputError is command output that could not be decoded as UTF-8.
type NonTextOutputError struct {
	Cmd string
}

func (e *NonTextOutputError) Error() string {
	return fmt.Sprintf("output of %q is not valid UTF-8", e.Cmd)
}

// OutsideRootError means the current directory is not a descendant of the
// repository root.
type OutsideRootError struct {
	CurrentDir  string
	ProjectRoot string
}

func (e *OutsideRootError) Error() string {
	return fmt.Sprintf("current directory %s is outside the project root %s", e.CurrentDir, e.ProjectRoot)
}

// GraphBuildError is a dependency-graph resolution failure.
type GraphBuildError struct {
	Err error
}

func (e *GraphBuildError) Error() string {
	return fmt.Sprintf("building package graph: %v", e.Err)
}

func (e *GraphBuildError) Unwrap() error {
	return e.Err
}
