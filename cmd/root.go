// Package cmd provides the CLI commands for nex.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nexus-switchboard/nex/internal/domain"
	"github.com/nexus-switchboard/nex/internal/infrastructure/config"
	"github.com/nexus-switchboard/nex/internal/usecases"
)

// Logger defines the logging interface used by the commands.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Reporter is the rendering surface the commands write to: the shared
// result stream plus the banner and list-row formats.
type Reporter interface {
	domain.Reporter
	Banner(path, project, projType string, dryRun bool)
	ProjectLine(st *domain.ProjectState)
}

// Dependencies holds all injectable dependencies for the commands.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func() Logger

	// VCSFactory creates a version-control client for a project root.
	VCSFactory usecases.VCSFactory

	// PkgFactory creates a package client for a project root and manifest.
	PkgFactory usecases.PackageClientFactory

	// ReporterFactory creates the result renderer for the given writer.
	ReporterFactory func(out io.Writer) Reporter

	// Stdout is the writer for rendered results.
	Stdout io.Writer

	// Stderr is the writer for warnings and errors.
	Stderr io.Writer
}

// defaultDeps holds the production dependencies, set from main() via
// SetDefaultDependencies before Execute().
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// app carries the state shared between the root command's setup and its
// subcommands for one invocation: effective config, discovered projects,
// and the rendering/logging surfaces.
type app struct {
	deps *Dependencies
	v    *viper.Viper

	cfg      *config.Config
	log      Logger
	rep      Reporter
	projects []*domain.Project
}

// NewRootCmd creates the root command with the production dependencies.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency
// injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	a := &app{deps: deps, v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "nex",
		Short: "Manage a tree of related nexus packages",
		Long: `nex discovers the nexus packages under a directory tree and keeps each
one level with its git remote and the npm registry: committing, pulling,
pushing, bumping versions and publishing as its state requires.

Projects are recognized by their package.json: a nexus keyword
(nexus-module, nexus-connection, nexus-app) or a core package name.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringP("root", "r", "", "root directory to start looking for nexus packages (default: cwd)")
	pf.StringP("branch", "b", config.DefaultBranch, "branch name used for the targeted projects")
	pf.StringP("remote", "o", config.DefaultRemote, "remote name used for the targeted projects")
	pf.StringP("project", "p", "", "target a single project by unscoped name")
	pf.StringP("type", "y", "", "target only projects of this type (nexus-module, nexus-connection, nexus-app)")
	pf.Bool("dry-run", false, "simulate mutating actions where the underlying tool allows")

	bindFlag(a.v, config.KeyRoot, pf, "root")
	bindFlag(a.v, config.KeyBranch, pf, "branch")
	bindFlag(a.v, config.KeyRemote, pf, "remote")
	bindFlag(a.v, config.KeyProject, pf, "project")
	bindFlag(a.v, config.KeyProjectType, pf, "type")
	bindFlag(a.v, config.KeyDryRun, pf, "dry-run")

	rootCmd.AddCommand(
		newListCmd(a),
		newCommitCmd(a),
		newPushCmd(a),
		newPullCmd(a),
		newUpdateCmd(a),
		newPublishCmd(a),
		newVersionCmd(a),
		newLinkCmd(a),
		newSyncCmd(a),
		newDeployCmd(a),
	)

	return rootCmd
}

// setup runs before every subcommand: load config, build the logger and
// reporter, discover projects, print the banner.
func (a *app) setup(cmd *cobra.Command) error {
	if a.deps == nil {
		return errors.New("dependencies not configured")
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	a.log = a.deps.LoggerFactory()
	out := a.deps.Stdout
	if out == nil {
		out = os.Stdout
	}
	a.rep = a.deps.ReporterFactory(out)

	ctx := a.ctx(cmd)

	a.log.Info(ctx, "starting nex", map[string]interface{}{
		"root":    cfg.Root,
		"branch":  cfg.Branch,
		"remote":  cfg.Remote,
		"dry_run": cfg.DryRun,
	})

	a.rep.Banner(cfg.Root, cfg.Project, cfg.ProjectType, cfg.DryRun)

	registry := usecases.NewRegistry(usecases.RegistryOptions{
		Root:        cfg.Root,
		Branch:      cfg.Branch,
		Remote:      cfg.Remote,
		DryRun:      cfg.DryRun,
		Project:     cfg.Project,
		ProjectType: cfg.ProjectType,
	}, a.deps.VCSFactory, a.deps.PkgFactory, a.log)

	projects, err := registry.Discover(ctx)
	if err != nil {
		a.log.Error(ctx, "project discovery failed", err, nil)
		return err
	}
	a.projects = projects

	return nil
}

// ctx returns the command context, falling back to Background.
func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// forEachProject runs fn against every discovered project in order,
// heading each project's result stream. A project's failure never stops
// the batch.
func (a *app) forEachProject(cmd *cobra.Command, fn func(ctx context.Context, proj *domain.Project)) {
	ctx := a.ctx(cmd)
	for _, proj := range a.projects {
		a.rep.BeginProject(proj.Name())
		fn(ctx, proj)
	}
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindFlag wires one persistent flag into viper. Binding only fails on a
// missing flag, which would be a programming error here.
func bindFlag(v *viper.Viper, key string, pf *pflag.FlagSet, name string) {
	if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}
