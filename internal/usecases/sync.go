package usecases

import (
	"context"
	"fmt"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// Pull pulls the tracked branch from the tracked remote, refusing with a
// failed result (never an error) when the branch or remote was not found,
// or when the branch is simultaneously ahead and behind. Nothing-to-pull
// is a successful no-op.
func Pull(ctx context.Context, proj *domain.Project) domain.ActionResult {
	st := &proj.State

	if !st.BranchValid {
		return domain.Failure(domain.ActionPull,
			fmt.Sprintf("unable to pull because branch %s could not be found", proj.Branch))
	}
	if !st.RemoteValid {
		return domain.Failure(domain.ActionPull,
			fmt.Sprintf("unable to pull because remote %s could not be found", proj.Remote))
	}
	if st.CommitsBehind == 0 {
		return domain.Completed(domain.ActionPull, "nothing to do")
	}
	if st.CommitsAhead > 0 {
		return domain.Failure(domain.ActionPull, "cannot pull while your branch is ahead of remote")
	}

	res := proj.VCS.Pull(ctx, proj.Remote, proj.Branch)
	if res.Succeeded() {
		st.CommitsBehind = 0
	}
	return res
}

// Syncer runs the synchronize workflow: a linear commit-pull-push pass per
// project, independent of deploy planning. Any failed step stops that
// project's synchronization; the batch always continues.
type Syncer struct {
	logger Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(log Logger) *Syncer {
	return &Syncer{logger: log}
}

// SyncProject brings one project level with its remote: commit if dirty,
// pull if behind with nothing ahead, push if ahead. Results stream to the
// reporter as they are produced. Returns true when every needed step
// succeeded.
//
// Under dry-run the decisions track a shadow ahead count, so a simulated
// commit is still followed by a simulated push and the preview matches
// what a real run would do.
func (s *Syncer) SyncProject(ctx context.Context, proj *domain.Project, commitMsg string, rep domain.Reporter) bool {
	st := &proj.State
	ahead := st.CommitsAhead

	if st.IsDirty {
		rep.Report(domain.Advisory(domain.ActionSync, "committing local changes..."))
		res := proj.VCS.Commit(ctx, commitMsg, st.DryRun)
		rep.Report(res)
		if res.Failed() {
			return false
		}
		if !st.DryRun {
			st.IsDirty = false
			st.CommitsAhead++
		}
		ahead++
	}

	if st.CommitsBehind > 0 && ahead == 0 {
		rep.Report(domain.Advisory(domain.ActionSync, "pulling from remote..."))
		res := Pull(ctx, proj)
		rep.Report(res)
		if res.Failed() {
			return false
		}
	}

	if ahead > 0 {
		rep.Report(domain.Advisory(domain.ActionSync, "pushing to remote..."))
		res := proj.VCS.Push(ctx, proj.Remote, proj.Branch, st.DryRun)
		rep.Report(res)
		if res.Failed() {
			return false
		}
		if !st.DryRun {
			st.CommitsAhead = 0
		}
	}

	return true
}

// Sync synchronizes every project in turn and reports the batch tally.
func (s *Syncer) Sync(ctx context.Context, projects []*domain.Project, commitMsg string, rep domain.Reporter) domain.Summary {
	summary := domain.Summary{Total: len(projects)}

	for _, proj := range projects {
		rep.BeginProject(proj.Name())
		if s.SyncProject(ctx, proj, commitMsg, rep) {
			summary.Succeeded++
		} else {
			s.logger.Warn(ctx, "project failed to synchronize", map[string]interface{}{
				"project": proj.Name(),
			})
		}
	}

	rep.Summarize(domain.ActionSync, summary)
	return summary
}
