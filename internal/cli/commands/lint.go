package commands

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quaylabs/repolint/pkg/lint"
)

// ErrLintFindings signals error-level findings; the message is already on
// screen, so Execute suppresses the usual error banner and only the exit
// status carries it.
var ErrLintFindings = errors.New("lint findings")

// LintOptions holds options for the lint command.
type LintOptions struct {
	FailFast bool   // Stop after the first error-level finding
	Since    string // Restrict file checks to files changed since merge-base(HEAD, rev)
	Watch    bool   // Re-run on filesystem changes
	Skipped  bool   // Show skipped rule runs
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run hygiene checks over the workspace",
		Long: `Run the configured rule bundle over the workspace.

Project and dependency-graph rules always see the whole workspace;
--since restricts the file-path and content rules to files changed
since the merge base with the given revision.`,
		Example: `  # Run all checks
  repolint lint

  # Stop at the first error
  repolint lint --fail-fast

  # Only check files changed relative to origin/main
  repolint lint --since origin/main

  # Re-run on file changes
  repolint lint --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Watch {
				return watchLint(cmd, opts)
			}
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop after the first error-level finding")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only lint files changed since merge-base(HEAD, rev)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-run when workspace files change")
	cmd.Flags().BoolVar(&opts.Skipped, "show-skipped", false, "Show skipped rule runs")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return runLintOnce(cmdCtx, opts)
}

func runLintOnce(cmdCtx *CommandContext, opts *LintOptions) error {
	bundle, err := buildLinters(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	engineCfg := lint.NewEngineConfig(cmdCtx.Workspace).
		WithProjectLinters(bundle.project...).
		WithPackageLinters(bundle.packages...).
		WithFilePathLinters(bundle.filePaths...).
		WithContentLinters(bundle.content...).
		FailFast(opts.FailFast)

	if opts.Since != "" {
		changed, err := changedSince(cmdCtx, opts.Since)
		if err != nil {
			return err
		}
		engineCfg.WithFileFilter(changed)
	}

	results, err := engineCfg.Build().Run()
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("lint run finished",
		"run_id", results.RunID,
		"messages", len(results.Messages),
		"skipped", len(results.Skipped))

	if err := cmdCtx.Renderer.RenderResults(results, opts.Skipped); err != nil {
		return err
	}
	if results.HasErrors() {
		return ErrLintFindings
	}
	if len(results.Messages) == 0 {
		cmdCtx.Renderer.Success("No hygiene issues found")
	}
	return nil
}

// changedSince lists the files changed since the merge base of HEAD and
// rev, excluding deletions, which have no content to lint.
func changedSince(cmdCtx *CommandContext, rev string) ([]string, error) {
	base, err := cmdCtx.Workspace.VCS().MergeBase(rev)
	if err != nil {
		return nil, err
	}
	return cmdCtx.Workspace.ChangedFiles(base, "", "d")
}

// watchDebounce batches bursts of filesystem events into one re-run.
const watchDebounce = 500 * time.Millisecond

func watchLint(cmd *cobra.Command, opts *LintOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	run := func() error {
		// A fresh context per run: the caches are write-once, and watch
		// exists precisely because the repository changed.
		cmdCtx, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		if err := runLintOnce(cmdCtx, opts); err != nil && err != ErrLintFindings {
			return err
		}
		return resetWatches(watcher, cmdCtx)
	}

	if err := run(); err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-pending:
			if err := run(); err != nil {
				return err
			}
		}
	}
}

// resetWatches points the watcher at every directory containing tracked
// files. fsnotify does not recurse, so each directory is added explicitly.
func resetWatches(watcher *fsnotify.Watcher, cmdCtx *CommandContext) error {
	for _, w := range watcher.WatchList() {
		_ = watcher.Remove(w)
	}

	files, err := cmdCtx.Workspace.TrackedFiles()
	if err != nil {
		return err
	}
	dirs := map[string]bool{".": true}
	for _, f := range files {
		dirs[path.Dir(f)] = true
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	for _, d := range sorted {
		// Directories can vanish between the listing and the watch call.
		_ = watcher.Add(cmdCtx.Workspace.FullPath(d))
	}
	return nil
}
