package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-switchboard/nex/internal/domain"
	"github.com/nexus-switchboard/nex/internal/usecases"
)

// newSyncCmd brings every project level with its remote: commit if dirty,
// pull if behind, push if ahead, then report the batch tally.
func newSyncCmd(a *app) *cobra.Command {
	var msg string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize every project with its tracked remote",
		Run: func(cmd *cobra.Command, _ []string) {
			syncer := usecases.NewSyncer(a.log)
			syncer.Sync(a.ctx(cmd), a.projects, msg, a.rep)
		},
	}

	cmd.Flags().StringVarP(&msg, "msg", "m", "", "commit message to use if a commit must be made")

	return cmd
}

// newDeployCmd runs the reconciliation engine per project: compute the
// action plan from the project's state and execute it, short-circuiting
// that project on the first failed step.
func newDeployCmd(a *app) *cobra.Command {
	var (
		kind string
		msg  string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Reconcile and deploy every project",
		Long: `deploy inspects each project's state and decides which actions must run:
a dirty tree is committed, outgoing commits are pushed, and when the
manifest version would not outrun the registry, it is bumped and the
package published. A project whose branch has diverged from its remote,
or whose manifest version is behind the published version, is refused
before anything runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !domain.ValidBumpKind(kind) {
				return fmt.Errorf("invalid version type %q: must be patch, minor or major", kind)
			}

			executor := usecases.NewExecutor(a.log)
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				for _, res := range executor.Deploy(ctx, proj, msg, domain.BumpKind(kind)) {
					a.rep.Report(res)
				}
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "version-type", "t", string(domain.BumpPatch),
		"version component to bump when a bump is required")
	cmd.Flags().StringVarP(&msg, "msg", "m", "", "commit message to use if a commit must be made")

	return cmd
}
