package domain

import (
	"context"
	"errors"

	"github.com/Masterminds/semver/v3"
)

// Domain errors for state capture and plan computation.
var (
	// ErrRepositoryNotFound indicates a project root is not a valid git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at project root")

	// ErrManifestInvalid indicates a package.json could not be parsed.
	ErrManifestInvalid = errors.New("package manifest is not valid JSON")

	// ErrStateUnavailable indicates state a decision depends on could not be
	// captured: the tracked branch or remote is missing, or the registry
	// could not be reached. Actions that need the missing data must refuse
	// rather than guess.
	ErrStateUnavailable = errors.New("project state unavailable")

	// ErrDiverged indicates the branch is simultaneously ahead of and behind
	// its remote counterpart. Automated reconciliation never attempts a
	// merge; the plan aborts before any mutation.
	ErrDiverged = errors.New("local and remote have diverged; manual reconciliation required")

	// ErrVersionRegression indicates the manifest version is behind the
	// published version. Proceeding would regress the published artifact,
	// so the plan aborts before any mutation.
	ErrVersionRegression = errors.New("local package version is behind the published version; refusing to proceed")
)

// VersionControlClient is the capability contract for git operations on a
// single project's repository. Read methods return errors; mutating
// methods never raise and instead resolve to a typed ActionResult carrying
// the underlying tool's diagnostic text on failure.
type VersionControlClient interface {
	// IsDirty reports whether the working tree has uncommitted changes to
	// tracked or staged files. Untracked files do not count.
	IsDirty() (bool, error)

	// HasBranch reports whether a local branch with the given name exists.
	HasBranch(name string) (bool, error)

	// HasRemote reports whether a remote with the given name is configured.
	HasRemote(name string) (bool, error)

	// AheadCount returns the number of commits on the local branch that are
	// not on the remote tracking branch.
	AheadCount(ctx context.Context, remote, branch string) (int, error)

	// BehindCount returns the number of commits on the remote tracking
	// branch that are not on the local branch.
	BehindCount(ctx context.Context, remote, branch string) (int, error)

	// Commit stages everything and commits with the given message. A clean
	// tree is a successful no-op. dryRun passes git's native --dry-run.
	Commit(ctx context.Context, message string, dryRun bool) ActionResult

	// Push pushes the branch to the remote. Nothing-to-push is a successful
	// no-op. dryRun passes git's native --dry-run.
	Push(ctx context.Context, remote, branch string, dryRun bool) ActionResult

	// Pull pulls the branch from the remote.
	Pull(ctx context.Context, remote, branch string) ActionResult

	// ResetWorkingTree discards uncommitted local changes.
	ResetWorkingTree(ctx context.Context) ActionResult
}

// PackageClient is the capability contract for npm operations on a single
// project.
type PackageClient interface {
	// LocalVersion returns the version declared in the project manifest.
	LocalVersion() (*semver.Version, error)

	// LatestPublishedVersion returns the newest version of the named
	// package on the registry. A package that has never been published
	// resolves to 0.0.0. An unreachable registry wraps ErrStateUnavailable.
	LatestPublishedVersion(ctx context.Context, name string) (*semver.Version, error)

	// BumpVersion increments the manifest version by the given component.
	// The underlying tool has no simulate mode; dry-run handling is the
	// caller's responsibility.
	BumpVersion(ctx context.Context, kind BumpKind) ActionResult

	// Publish publishes the package to the registry. dryRun passes npm's
	// native --dry-run.
	Publish(ctx context.Context, dryRun bool) ActionResult

	// UpdateDependencies runs a dependency update. dryRun passes npm's
	// native --dry-run.
	UpdateDependencies(ctx context.Context, dryRun bool) ActionResult

	// Link registers the package into the global link namespace.
	Link(ctx context.Context) ActionResult
}

// Reporter receives per-project action results as workflows produce them.
// Implementations render the stream for the CLI; results arrive in
// execution order and are never revisited.
type Reporter interface {
	// BeginProject marks the start of one project's result stream.
	BeginProject(name string)

	// Report renders one action result.
	Report(res ActionResult)

	// Summarize renders the batch tally for summary-style workflows.
	Summarize(kind ActionKind, s Summary)
}
