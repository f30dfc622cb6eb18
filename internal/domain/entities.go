// Package domain defines the core business entities and interfaces for nex.
package domain

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ActionKind identifies one of the side-effecting actions nex can run
// against a project. The five plan kinds (Commit, Pull, Push, VersionBump,
// Publish) may appear in an ActionPlan; the remaining kinds only label
// results in the report stream.
type ActionKind string

const (
	ActionNone        ActionKind = ""
	ActionCommit      ActionKind = "commit"
	ActionStage       ActionKind = "stage"
	ActionPull        ActionKind = "pull"
	ActionPush        ActionKind = "push"
	ActionVersionBump ActionKind = "version"
	ActionPublish     ActionKind = "publish"
	ActionUpdate      ActionKind = "update"
	ActionLink        ActionKind = "link"
	ActionReset       ActionKind = "reset"
	ActionSync        ActionKind = "sync"
	ActionDeploy      ActionKind = "deploy"
	ActionList        ActionKind = "list"
)

// BumpKind is the semantic-version component a VersionBump increments.
type BumpKind string

const (
	BumpPatch BumpKind = "patch"
	BumpMinor BumpKind = "minor"
	BumpMajor BumpKind = "major"
)

// ValidBumpKind reports whether s names one of the three bump kinds.
func ValidBumpKind(s string) bool {
	switch BumpKind(s) {
	case BumpPatch, BumpMinor, BumpMajor:
		return true
	}
	return false
}

// Outcome is the tri-state result of an action. Advisory marks a step that
// was neither run nor failed, such as a command with no dry-run mode.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
	OutcomeAdvisory
)

// ActionResult is the outcome of executing one action against a project.
// Results are append-only per project; past entries are never mutated.
type ActionResult struct {
	Kind    ActionKind
	Message string
	Outcome Outcome
}

// Succeeded reports whether the action completed. An advisory result is
// neither a success nor a failure.
func (r ActionResult) Succeeded() bool { return r.Outcome == OutcomeSuccess }

// Failed reports whether the action failed outright.
func (r ActionResult) Failed() bool { return r.Outcome == OutcomeFailure }

// Completed builds a successful ActionResult.
func Completed(kind ActionKind, message string) ActionResult {
	return ActionResult{Kind: kind, Message: message, Outcome: OutcomeSuccess}
}

// Failure builds a failed ActionResult carrying the tool's diagnostic text.
func Failure(kind ActionKind, message string) ActionResult {
	return ActionResult{Kind: kind, Message: message, Outcome: OutcomeFailure}
}

// Advisory builds an ActionResult for a step that was skipped with a warning.
func Advisory(kind ActionKind, message string) ActionResult {
	return ActionResult{Kind: kind, Message: message, Outcome: OutcomeAdvisory}
}

// ActionPlan is the ordered sequence of actions the reconciliation engine
// decided must run for one project. No kind appears twice.
type ActionPlan []ActionKind

// Contains reports whether the plan includes the given kind.
func (p ActionPlan) Contains(kind ActionKind) bool {
	for _, k := range p {
		if k == kind {
			return true
		}
	}
	return false
}

// ProjectState captures the facts about one project that drive
// reconciliation decisions. It is rebuilt on every invocation and owned
// exclusively by that project's run; the plan executor refreshes the
// version and divergence fields after a mutating step succeeds so that
// later decisions never read stale counters.
type ProjectState struct {
	// Name is the manifest-declared package name, possibly scoped
	// (e.g. @nexus-switchboard/nexus-core).
	Name string

	// LocalVersion is the version declared in the project manifest.
	LocalVersion *semver.Version

	// RemoteVersion is the latest published version, resolved lazily via
	// ResolveRemoteVersion. Nil until resolved.
	RemoteVersion *semver.Version

	// IsDirty is true when the working tree has uncommitted modifications
	// to tracked or staged files.
	IsDirty bool

	// CommitsAhead and CommitsBehind count the divergence between the
	// tracked branch and its remote counterpart. Both are meaningful only
	// when BranchValid and RemoteValid are true.
	CommitsAhead  int
	CommitsBehind int

	// BranchValid and RemoteValid record whether the configured branch and
	// remote exist. When either is false the project is in a degraded but
	// valid state: divergence counts are zero and fetch-dependent actions
	// must be refused.
	BranchValid bool
	RemoteValid bool

	// DryRun is the process-wide simulate flag, honored by the executor.
	DryRun bool

	remoteResolved bool
	remoteErr      error
}

// UnscopedName returns the package name with any scope prefix stripped,
// e.g. "@nexus-switchboard/nexus-core" -> "nexus-core".
func (s *ProjectState) UnscopedName() string {
	if i := strings.LastIndex(s.Name, "/"); i != -1 {
		return s.Name[i+1:]
	}
	return s.Name
}

// ResolveRemoteVersion queries the registry for the latest published
// version, at most once for the lifetime of this state. Subsequent calls
// return the memoized result, including a memoized failure.
func (s *ProjectState) ResolveRemoteVersion(ctx context.Context, pkg PackageClient) error {
	if s.remoteResolved {
		return s.remoteErr
	}
	s.remoteResolved = true
	v, err := pkg.LatestPublishedVersion(ctx, s.Name)
	if err != nil {
		s.remoteErr = err
		return err
	}
	s.RemoteVersion = v
	return nil
}

// RemoteVersionKnown reports whether a published version has been resolved.
func (s *ProjectState) RemoteVersionKnown() bool {
	return s.RemoteVersion != nil
}

// Project ties a discovered project's manifest and state to the clients
// that act on it. Each project owns its own client instances because both
// are bound to the project's root directory.
type Project struct {
	Root     string
	Manifest Manifest

	// Branch and Remote name the tracked branch and remote this project
	// reconciles against.
	Branch string
	Remote string

	State ProjectState
	VCS   VersionControlClient
	Pkg   PackageClient
}

// Name returns the manifest-declared package name.
func (p *Project) Name() string { return p.State.Name }

// Summary tallies a batch workflow across projects.
type Summary struct {
	Succeeded int
	Total     int
}
