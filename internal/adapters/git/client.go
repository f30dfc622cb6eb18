// Package git implements domain.VersionControlClient for a local
// repository. State reads go through go-git/v5; mutating commands shell
// out to the git binary so tool-native --dry-run semantics pass through
// unchanged and failures carry git's own diagnostic text.
package git

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// Logger defines the logging interface for the git adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// CommandRunner executes an external command in a directory and returns
// its combined output. Injected so tests can fake the git binary.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner is the production CommandRunner backed by os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Client operates on one project's repository.
type Client struct {
	repo   *gogit.Repository
	path   string
	run    CommandRunner
	logger Logger
}

// NewClient opens the repository at path. Returns
// domain.ErrRepositoryNotFound when the path is not inside a git
// repository.
func NewClient(path string, log Logger) (*Client, error) {
	return NewClientWithRunner(path, ExecRunner, log)
}

// NewClientWithRunner opens the repository with an injected command
// runner. This is the constructor tests use.
func NewClientWithRunner(path string, run CommandRunner, log Logger) (*Client, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	return &Client{repo: repo, path: path, run: run, logger: log}, nil
}

// IsDirty reports whether tracked or staged files have uncommitted
// changes. Untracked files do not make a tree dirty.
func (c *Client) IsDirty() (bool, error) {
	wt, err := c.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}

	for _, fs := range status {
		if fs.Staging == gogit.Untracked && fs.Worktree == gogit.Untracked {
			continue
		}
		if fs.Staging != gogit.Unmodified || fs.Worktree != gogit.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

// HasBranch reports whether a local branch with the given name exists.
func (c *Client) HasBranch(name string) (bool, error) {
	_, err := c.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve branch %s: %w", name, err)
	}
	return true, nil
}

// HasRemote reports whether a remote with the given name is configured.
func (c *Client) HasRemote(name string) (bool, error) {
	_, err := c.repo.Remote(name)
	if err == gogit.ErrRemoteNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve remote %s: %w", name, err)
	}
	return true, nil
}

// AheadCount counts commits on the local branch that the remote tracking
// branch does not have.
func (c *Client) AheadCount(ctx context.Context, remote, branch string) (int, error) {
	ahead, _, err := c.divergence(ctx, remote, branch)
	return ahead, err
}

// BehindCount counts commits on the remote tracking branch that the local
// branch does not have.
func (c *Client) BehindCount(ctx context.Context, remote, branch string) (int, error) {
	_, behind, err := c.divergence(ctx, remote, branch)
	return behind, err
}

// divergence walks the ancestor sets of the local and remote branch tips
// and counts the commits exclusive to each side.
func (c *Client) divergence(ctx context.Context, remote, branch string) (ahead, behind int, err error) {
	localRef, err := c.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	remoteRef, err := c.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve %s/%s: %w", remote, branch, err)
	}

	localSet, err := c.ancestorSet(ctx, localRef.Hash())
	if err != nil {
		return 0, 0, err
	}
	remoteSet, err := c.ancestorSet(ctx, remoteRef.Hash())
	if err != nil {
		return 0, 0, err
	}

	for h := range localSet {
		if _, ok := remoteSet[h]; !ok {
			ahead++
		}
	}
	for h := range remoteSet {
		if _, ok := localSet[h]; !ok {
			behind++
		}
	}

	c.logger.Debug(ctx, "computed branch divergence", map[string]interface{}{
		"path":   c.path,
		"branch": branch,
		"remote": remote,
		"ahead":  ahead,
		"behind": behind,
	})

	return ahead, behind, nil
}

// ancestorSet collects every commit reachable from the given tip.
func (c *Client) ancestorSet(ctx context.Context, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := c.repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]struct{})
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		commit, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A walk that cannot finish must not pass for a short history;
			// truncated ancestor sets corrupt the divergence counts.
			return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
		}
		set[commit.Hash] = struct{}{}
	}
	return set, nil
}

// Commit stages all changes and commits them. A clean tree is a
// successful no-op.
func (c *Client) Commit(ctx context.Context, message string, dryRun bool) domain.ActionResult {
	if _, err := c.run(ctx, c.path, "git", "add", "."); err != nil {
		return domain.Failure(domain.ActionStage, fmt.Sprintf("failed to stage changes: %v", err))
	}

	dirty, err := c.IsDirty()
	if err != nil {
		return domain.Failure(domain.ActionCommit, err.Error())
	}
	if !dirty {
		return domain.Completed(domain.ActionCommit, "nothing to do: working directory clean")
	}

	args := []string{"commit", "-m", message}
	if dryRun {
		args = append(args, "--dry-run")
	}

	out, err := c.run(ctx, c.path, "git", args...)
	if err != nil {
		if strings.Contains(out, "working directory clean") || strings.Contains(out, "working tree clean") {
			return domain.Completed(domain.ActionCommit, "nothing to do: working directory clean")
		}
		return domain.Failure(domain.ActionCommit, out)
	}
	return domain.Completed(domain.ActionCommit, "operation completed successfully")
}

// Push pushes the branch to the remote.
func (c *Client) Push(ctx context.Context, remote, branch string, dryRun bool) domain.ActionResult {
	args := []string{"push", remote, branch}
	if dryRun {
		args = append(args, "--dry-run")
	}

	out, err := c.run(ctx, c.path, "git", args...)
	if err != nil {
		return domain.Failure(domain.ActionPush, out)
	}
	return domain.Completed(domain.ActionPush, "operation completed successfully")
}

// Pull pulls the branch from the remote.
func (c *Client) Pull(ctx context.Context, remote, branch string) domain.ActionResult {
	out, err := c.run(ctx, c.path, "git", "pull", remote, branch)
	if err != nil {
		return domain.Failure(domain.ActionPull, out)
	}
	return domain.Completed(domain.ActionPull, "pull completed successfully")
}

// ResetWorkingTree discards uncommitted changes: unstages everything and
// restores tracked files from HEAD.
func (c *Client) ResetWorkingTree(ctx context.Context) domain.ActionResult {
	if out, err := c.run(ctx, c.path, "git", "reset"); err != nil {
		return domain.Failure(domain.ActionReset, out)
	}
	if out, err := c.run(ctx, c.path, "git", "checkout", "."); err != nil {
		return domain.Failure(domain.ActionReset, out)
	}
	return domain.Completed(domain.ActionReset, "operation completed successfully")
}
