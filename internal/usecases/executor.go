package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// advisoryNoBumpDryRun is emitted when a dry run reaches a VersionBump:
// npm version has no simulate mode, so the step is skipped with a warning
// and the plan continues.
const advisoryNoBumpDryRun = "there is no way to dry run the npm version command"

// Executor runs an ActionPlan step by step against a project's clients,
// short-circuiting on the first failed step. It never rolls back
// already-applied steps; each step is individually idempotent instead.
type Executor struct {
	logger Logger
}

// NewExecutor creates a plan executor.
func NewExecutor(log Logger) *Executor {
	return &Executor{logger: log}
}

// Execute runs the plan for one project. It returns the results of the
// steps that ran, in order, plus the kind of the step that failed
// (ActionNone when every step succeeded). Results past the failing step
// are never produced.
//
// When the project is in dry-run mode, Commit, Push and Publish pass the
// tool-native simulate flag through so validation still occurs;
// VersionBump is skipped with an advisory result. After a simulated
// publish, the working tree is reset so repeated dry runs are idempotent.
func (e *Executor) Execute(
	ctx context.Context,
	proj *domain.Project,
	plan domain.ActionPlan,
	commitMsg string,
	bump domain.BumpKind,
) ([]domain.ActionResult, domain.ActionKind) {
	st := &proj.State
	results := make([]domain.ActionResult, 0, len(plan))

	for _, step := range plan {
		res := e.runStep(ctx, proj, step, commitMsg, bump)
		results = append(results, res)

		if res.Failed() {
			e.logger.Error(ctx, "plan halted on failed step", errors.New(res.Message), map[string]interface{}{
				"project": st.Name,
				"step":    string(step),
			})
			return results, step
		}

		if res.Succeeded() && !st.DryRun {
			e.refreshState(st, step, bump)
		}

		if step == domain.ActionPublish && res.Succeeded() && st.DryRun {
			// Discard whatever the simulated publish touched locally so the
			// next dry run starts from the same tree.
			reset := proj.VCS.ResetWorkingTree(ctx)
			results = append(results, reset)
			if reset.Failed() {
				return results, domain.ActionReset
			}
		}
	}

	return results, domain.ActionNone
}

// runStep dispatches a single plan step to the owning client.
func (e *Executor) runStep(
	ctx context.Context,
	proj *domain.Project,
	step domain.ActionKind,
	commitMsg string,
	bump domain.BumpKind,
) domain.ActionResult {
	st := &proj.State

	e.logger.Debug(ctx, "executing plan step", map[string]interface{}{
		"project": st.Name,
		"step":    string(step),
		"dry_run": st.DryRun,
	})

	switch step {
	case domain.ActionCommit:
		return proj.VCS.Commit(ctx, commitMsg, st.DryRun)
	case domain.ActionPush:
		return proj.VCS.Push(ctx, proj.Remote, proj.Branch, st.DryRun)
	case domain.ActionPull:
		return Pull(ctx, proj)
	case domain.ActionVersionBump:
		if st.DryRun {
			return domain.Advisory(domain.ActionVersionBump, advisoryNoBumpDryRun)
		}
		return proj.Pkg.BumpVersion(ctx, bump)
	case domain.ActionPublish:
		return proj.Pkg.Publish(ctx, st.DryRun)
	default:
		return domain.Failure(step, fmt.Sprintf("unknown plan step %q", step))
	}
}

// refreshState updates the project state after a mutating step succeeded,
// so later decisions within this run never read counters the step just
// invalidated.
func (e *Executor) refreshState(st *domain.ProjectState, step domain.ActionKind, bump domain.BumpKind) {
	switch step {
	case domain.ActionCommit:
		st.IsDirty = false
		st.CommitsAhead++
	case domain.ActionPush:
		st.CommitsAhead = 0
	case domain.ActionVersionBump:
		if st.LocalVersion != nil {
			bumped := bumpVersion(*st.LocalVersion, bump)
			st.LocalVersion = &bumped
			// npm version commits the manifest change on a clean tree.
			st.CommitsAhead++
		}
	case domain.ActionPublish:
		st.RemoteVersion = st.LocalVersion
	}
}

func bumpVersion(v semver.Version, kind domain.BumpKind) semver.Version {
	switch kind {
	case domain.BumpMajor:
		return v.IncMajor()
	case domain.BumpMinor:
		return v.IncMinor()
	default:
		return v.IncPatch()
	}
}

// Deploy computes and executes the reconciliation plan for one project.
// An abort (divergence, version regression, unavailable state) surfaces as
// a single failed deploy result; an empty plan surfaces as a successful
// no-op. All other results come from the executed steps.
func (e *Executor) Deploy(
	ctx context.Context,
	proj *domain.Project,
	commitMsg string,
	bump domain.BumpKind,
) []domain.ActionResult {
	st := &proj.State

	if err := st.ResolveRemoteVersion(ctx, proj.Pkg); err != nil {
		return []domain.ActionResult{domain.Failure(domain.ActionDeploy, err.Error())}
	}

	plan, err := ComputePlan(st)
	if err != nil {
		return []domain.ActionResult{domain.Failure(domain.ActionDeploy, err.Error())}
	}
	if len(plan) == 0 {
		return []domain.ActionResult{domain.Completed(domain.ActionDeploy, "no action required")}
	}

	e.logger.Info(ctx, "computed deploy plan", map[string]interface{}{
		"project": st.Name,
		"steps":   planSteps(plan),
	})

	results, _ := e.Execute(ctx, proj, plan, commitMsg, bump)
	return results
}

func planSteps(plan domain.ActionPlan) []string {
	steps := make([]string, len(plan))
	for i, k := range plan {
		steps[i] = string(k)
	}
	return steps
}
