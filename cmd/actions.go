package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-switchboard/nex/internal/domain"
	"github.com/nexus-switchboard/nex/internal/usecases"
)

// newListCmd lists every discovered project with its version, tree
// cleanliness, and divergence counts.
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the discovered nexus projects and their state",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, proj := range a.projects {
				a.rep.ProjectLine(&proj.State)
			}
			if len(a.projects) == 0 {
				a.rep.Report(domain.Advisory(domain.ActionList, "unable to find any nexus projects"))
			}
		},
	}
}

func newCommitCmd(a *app) *cobra.Command {
	var msg string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Stage and commit every project's local changes",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(proj.VCS.Commit(ctx, msg, proj.State.DryRun))
			})
		},
	}

	cmd.Flags().StringVarP(&msg, "msg", "m", "", "commit message")
	_ = cmd.MarkFlagRequired("msg")

	return cmd
}

func newPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push every project to its tracked remote",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(proj.VCS.Push(ctx, proj.Remote, proj.Branch, proj.State.DryRun))
			})
		},
	}
}

func newPullCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull every project from its tracked remote",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(usecases.Pull(ctx, proj))
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update every project's dependencies",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(proj.Pkg.UpdateDependencies(ctx, proj.State.DryRun))
			})
		},
	}
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish every project to the registry",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(proj.Pkg.Publish(ctx, proj.State.DryRun))
			})
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Bump every project's version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !domain.ValidBumpKind(kind) {
				return fmt.Errorf("invalid version type %q: must be patch, minor or major", kind)
			}

			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				if proj.State.DryRun {
					a.rep.Report(domain.Advisory(domain.ActionVersionBump,
						"there is no way to dry run the npm version command"))
					return
				}
				a.rep.Report(proj.Pkg.BumpVersion(ctx, domain.BumpKind(kind)))
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "version-type", "t", string(domain.BumpPatch),
		"version component to bump: patch, minor or major")

	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Register every project in npm's global link namespace",
		Run: func(cmd *cobra.Command, _ []string) {
			a.forEachProject(cmd, func(ctx context.Context, proj *domain.Project) {
				a.rep.Report(proj.Pkg.Link(ctx))
			})
		},
	}
}
