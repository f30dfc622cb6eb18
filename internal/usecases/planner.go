// Package usecases contains the application business logic: plan
// computation, plan execution, the synchronization workflow, and project
// discovery. This package orchestrates domain entities and interfaces.
package usecases

import (
	"context"
	"fmt"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// Logger defines the logging interface required by the use cases.
// This abstracts the logger dependency to avoid coupling to a specific
// implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// ComputePlan decides which actions must run to reconcile a project's
// local git state with its remote and its manifest version with the
// registry. It returns either an ordered plan or an abort error; never
// both. The computation is a single pass: earlier decisions update the
// flags later checks read, and nothing is re-derived.
//
// Abort rules, first match wins:
//  1. The branch has diverged from its remote counterpart, or the tree is
//     dirty while a pull is pending. Automated merging is never attempted.
//  2. The manifest version is behind the published version. Proceeding
//     would regress the published artifact.
//
// Plan order is load-bearing: a commit must precede a push, a bump must
// precede a publish, and a push must precede a publish. Pull is never part
// of a computed plan; it belongs to the synchronize workflow.
func ComputePlan(state *domain.ProjectState) (domain.ActionPlan, error) {
	if state.LocalVersion == nil {
		return nil, fmt.Errorf("%w: local version of %s is unknown", domain.ErrStateUnavailable, state.Name)
	}
	if !state.RemoteVersionKnown() {
		return nil, fmt.Errorf("%w: published version of %s is unresolved", domain.ErrStateUnavailable, state.Name)
	}

	isAhead := state.CommitsAhead > 0
	isBehind := state.CommitsBehind > 0
	needsCommit := state.IsDirty
	needsPush := isAhead && !isBehind
	needsPull := isBehind && !isAhead
	needsMerge := (isAhead && isBehind) || (needsPull && state.IsDirty)

	if needsMerge {
		return nil, fmt.Errorf("%w: %s is %d ahead and %d behind",
			domain.ErrDiverged, state.Name, state.CommitsAhead, state.CommitsBehind)
	}
	if state.LocalVersion.LessThan(state.RemoteVersion) {
		return nil, fmt.Errorf("%w: %s is at %s, registry has %s",
			domain.ErrVersionRegression, state.Name, state.LocalVersion, state.RemoteVersion)
	}

	needsPublish := state.LocalVersion.GreaterThan(state.RemoteVersion)

	var plan domain.ActionPlan

	if needsCommit {
		plan = append(plan, domain.ActionCommit)
		// A fresh commit is assumed to diverge from the remote.
		needsPush = true
	}
	if (needsPush || needsCommit) && !needsPublish {
		// Versions are level with the registry but new commits are headed
		// out: bump so the publish carries a new version.
		plan = append(plan, domain.ActionVersionBump)
		needsPublish = true
	}
	if needsPush {
		plan = append(plan, domain.ActionPush)
	}
	if needsPublish {
		plan = append(plan, domain.ActionPublish)
	}

	return plan, nil
}
