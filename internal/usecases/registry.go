package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// VCSFactory creates a version-control client rooted at a project directory.
type VCSFactory func(root string) (domain.VersionControlClient, error)

// PackageClientFactory creates a package client for a project directory and
// its parsed manifest.
type PackageClientFactory func(root string, manifest domain.Manifest) domain.PackageClient

// RegistryOptions configures project discovery.
type RegistryOptions struct {
	// Root is the directory tree to scan for package manifests.
	Root string

	// Branch and Remote name the tracked branch and remote every
	// discovered project reconciles against.
	Branch string
	Remote string

	// DryRun propagates the process-wide simulate flag into each state.
	DryRun bool

	// Project, when set, restricts discovery to the project whose
	// unscoped name matches.
	Project string

	// ProjectType, when set, restricts discovery to manifests declaring
	// the given keyword.
	ProjectType string
}

// Registry discovers nexus projects under a directory tree and captures a
// ProjectState for each. Discovery stops descending once a directory
// contains a package.json; nested packages belong to their own tree.
type Registry struct {
	opts   RegistryOptions
	newVCS VCSFactory
	newPkg PackageClientFactory
	logger Logger
}

// NewRegistry creates a Registry.
func NewRegistry(opts RegistryOptions, newVCS VCSFactory, newPkg PackageClientFactory, log Logger) *Registry {
	return &Registry{opts: opts, newVCS: newVCS, newPkg: newPkg, logger: log}
}

// Discover walks the root, loads manifests, applies the name and type
// filters, and captures git state for each matching project. A project
// whose repository cannot be opened is skipped with a warning; it never
// fails the batch.
func (r *Registry) Discover(ctx context.Context) ([]*domain.Project, error) {
	var projects []*domain.Project

	walkErr := filepath.WalkDir(r.opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name == ".git" || name == "node_modules" {
			return filepath.SkipDir
		}

		manifestPath := filepath.Join(path, "package.json")
		if _, statErr := os.Stat(manifestPath); statErr != nil {
			return nil
		}

		// This directory is an npm package; nothing below it is a
		// separate project.
		proj, loadErr := r.loadProject(ctx, path, manifestPath)
		if loadErr != nil {
			r.logger.Warn(ctx, "skipping project", map[string]interface{}{
				"path":  path,
				"error": loadErr.Error(),
			})
		} else if proj != nil {
			projects = append(projects, proj)
		}
		return filepath.SkipDir
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.opts.Root, walkErr)
	}

	r.logger.Debug(ctx, "project discovery complete", map[string]interface{}{
		"root":  r.opts.Root,
		"found": len(projects),
	})

	return projects, nil
}

// loadProject parses one manifest and, if it passes the nexus and filter
// checks, captures the project's state. Returns (nil, nil) for packages
// that are simply not targets.
func (r *Registry) loadProject(ctx context.Context, root, manifestPath string) (*domain.Project, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	if !manifest.IsNexusProject() || !manifest.MatchesType(r.opts.ProjectType) {
		return nil, nil
	}

	proj := &domain.Project{
		Root:     root,
		Manifest: manifest,
		Branch:   r.opts.Branch,
		Remote:   r.opts.Remote,
		State: domain.ProjectState{
			Name:   manifest.Name,
			DryRun: r.opts.DryRun,
		},
	}

	if r.opts.Project != "" && proj.State.UnscopedName() != r.opts.Project {
		return nil, nil
	}

	vcs, err := r.newVCS(root)
	if err != nil {
		return nil, err
	}
	proj.VCS = vcs
	proj.Pkg = r.newPkg(root, manifest)

	if err := r.captureState(ctx, proj); err != nil {
		return nil, err
	}

	return proj, nil
}

// captureState queries the version-control client once for the facts the
// decision engine needs. A missing branch or remote is a degraded but
// valid state: divergence counts stay zero and fetch-dependent actions
// will refuse downstream. The published version is left unresolved here;
// workflows that need it resolve it lazily through the state.
func (r *Registry) captureState(ctx context.Context, proj *domain.Project) error {
	st := &proj.State

	local, err := proj.Pkg.LocalVersion()
	if err != nil {
		return fmt.Errorf("unable to parse version of %s: %w", st.Name, err)
	}
	st.LocalVersion = local

	dirty, err := proj.VCS.IsDirty()
	if err != nil {
		return fmt.Errorf("unable to read working tree of %s: %w", st.Name, err)
	}
	st.IsDirty = dirty

	if st.BranchValid, err = proj.VCS.HasBranch(proj.Branch); err != nil {
		return err
	}
	if st.RemoteValid, err = proj.VCS.HasRemote(proj.Remote); err != nil {
		return err
	}

	if st.BranchValid && st.RemoteValid {
		if st.CommitsAhead, err = proj.VCS.AheadCount(ctx, proj.Remote, proj.Branch); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStateUnavailable, err)
		}
		if st.CommitsBehind, err = proj.VCS.BehindCount(ctx, proj.Remote, proj.Branch); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStateUnavailable, err)
		}
	} else {
		r.logger.Warn(ctx, "branch or remote not found; divergence counts unavailable", map[string]interface{}{
			"project":      st.Name,
			"branch":       proj.Branch,
			"branch_valid": st.BranchValid,
			"remote":       proj.Remote,
			"remote_valid": st.RemoteValid,
		})
	}

	return nil
}

// LoadManifest reads and decodes a package.json into the explicit manifest
// schema. Fields the schema does not declare are ignored; declared fields
// that are absent decode to zero values.
func LoadManifest(path string) (domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Manifest{}, err
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, fmt.Errorf("%w: %s: %v", domain.ErrManifestInvalid, path, err)
	}
	return m, nil
}
