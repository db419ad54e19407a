package workspace

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"
)

// VCS is the version-control gateway consumed by the lint engine. GitCli is
// the production implementation; tests substitute fakes.
type VCS interface {
	// Root returns the repository root.
	Root() string
	// TrackedFiles returns every tracked path relative to the root.
	TrackedFiles() ([]string, error)
	// FilesChangedBetween returns the paths changed between two revisions.
	// newRev and diffFilter may be empty.
	FilesChangedBetween(oldRev, newRev, diffFilter string) ([]string, error)
	// MergeBase returns the merge base of HEAD with the given ref.
	MergeBase(ref string) (string, error)
}

// GitCli wraps the git executable. It assumes the repository does not
// change during a run and caches the tracked-file list on first use; there
// is no invalidation.
type GitCli struct {
	root    string
	tracked func() ([]string, error)
}

// NewGitCli locates the repository root and returns a gateway rooted there.
func NewGitCli() (*GitCli, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return nil, ErrNotRepository
	}
	root := strings.TrimSuffix(string(out), "\n")
	if !utf8.ValidString(root) {
		return nil, &NonTextOutputError{Cmd: "git rev-parse --show-toplevel"}
	}
	g := &GitCli{root: root}
	g.tracked = sync.OnceValues(func() ([]string, error) {
		// -z separates entries with NUL so arbitrary path bytes survive.
		out, err := g.run("ls-files", "-z")
		if err != nil {
			return nil, err
		}
		return splitNulSeparated(out, "git ls-files")
	})
	return g, nil
}

// Root returns the repository root.
func (g *GitCli) Root() string {
	return g.root
}

// TrackedFiles returns every path tracked by git, relative to the root.
// The first call shells out; the result is cached for the gateway's
// lifetime.
func (g *GitCli) TrackedFiles() ([]string, error) {
	return g.tracked()
}

// FilesChangedBetween returns the paths changed between oldRev and newRev
// (or the working tree when newRev is empty). diffFilter has git
// --diff-filter semantics. Results are not cached.
func (g *GitCli) FilesChangedBetween(oldRev, newRev, diffFilter string) ([]string, error) {
	args := []string{"diff", "-z", "--name-only"}
	if diffFilter != "" {
		args = append(args, "--diff-filter="+diffFilter)
	}
	args = append(args, oldRev)
	if newRev != "" {
		args = append(args, newRev)
	}
	out, err := g.run(args...)
	if err != nil {
		return nil, err
	}
	return splitNulSeparated(out, "git diff")
}

// MergeBase returns the merge base of HEAD with ref.
func (g *GitCli) MergeBase(ref string) (string, error) {
	out, err := g.run("merge-base", "HEAD", ref)
	if err != nil {
		return "", err
	}
	hash := strings.TrimSuffix(string(out), "\n")
	if !utf8.ValidString(hash) {
		return "", &NonTextOutputError{Cmd: "git merge-base"}
	}
	return hash, nil
}

func (g *GitCli) run(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		name := "git " + strings.Join(args, " ")
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExecError{Cmd: name, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, &ExecError{Cmd: name, ExitCode: -1, Stderr: err.Error()}
	}
	return out, nil
}

// splitNulSeparated parses NUL-separated command output into paths,
// validating that each entry is text.
func splitNulSeparated(out []byte, cmd string) ([]string, error) {
	var paths []string
	for _, entry := range bytes.Split(out, []byte{0}) {
		if len(entry) == 0 {
			continue
		}
		if !utf8.Valid(entry) {
			return nil, &NonTextOutputError{Cmd: cmd}
		}
		paths = append(paths, string(entry))
	}
	return paths, nil
}
