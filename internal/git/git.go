// Package git reads the revision of the source tree a run is launched from.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/titantest/internal/exec"
)

// Revision identifies a working tree state.
type Revision struct {
	Commit string
	Branch string
	Dirty  bool
}

// String returns the short commit, the branch and a dirty marker,
// e.g. "3f2a9c1 (main, dirty)".
func (r Revision) String() string {
	if r.Commit == "" {
		return ""
	}
	commit := r.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	var tags []string
	if r.Branch != "" && r.Branch != "HEAD" {
		tags = append(tags, r.Branch)
	}
	if r.Dirty {
		tags = append(tags, "dirty")
	}
	if len(tags) == 0 {
		return commit
	}
	return fmt.Sprintf("%s (%s)", commit, strings.Join(tags, ", "))
}

// Runner runs git in a repository through a CommandRunner.
type Runner struct {
	runner   exec.CommandRunner
	repoPath string
}

// NewRunner creates a git runner for the repository at repoPath.
func NewRunner(runner exec.CommandRunner, repoPath string) *Runner {
	return &Runner{runner: runner, repoPath: repoPath}
}

// run executes a git command and returns its trimmed output.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	res, err := r.runner.Run(ctx, exec.Command{Name: "git", Args: args, Dir: r.repoPath})
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	if !res.Success() {
		return "", fmt.Errorf("git %s: exit status %d: %s",
			strings.Join(args, " "), res.ExitCode, strings.TrimSpace(string(res.Output)))
	}
	return strings.TrimSpace(string(res.Output)), nil
}

// Head returns the full commit hash of HEAD.
func (r *Runner) Head(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// CurrentBranch returns the name of the current branch, or "HEAD" when
// detached.
func (r *Runner) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// HasChanges returns true if there are uncommitted changes.
func (r *Runner) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Describe returns the revision of the working tree.
func (r *Runner) Describe(ctx context.Context) (Revision, error) {
	var rev Revision
	var err error
	if rev.Commit, err = r.Head(ctx); err != nil {
		return Revision{}, err
	}
	if rev.Branch, err = r.CurrentBranch(ctx); err != nil {
		return Revision{}, err
	}
	if rev.Dirty, err = r.HasChanges(ctx); err != nil {
		return Revision{}, err
	}
	return rev, nil
}
