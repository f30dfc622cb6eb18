// Package npm implements domain.PackageClient by invoking the npm CLI in
// a project's root directory.
package npm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// Logger defines the logging interface for the npm adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// CommandRunner executes an external command in a directory and returns
// its combined output. Injected so tests can fake the npm binary.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner is the production CommandRunner backed by os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// neverPublished is the version a package resolves to when the registry
// has no record of it: any local version is newer.
var neverPublished = semver.MustParse("0.0.0")

// Client operates on one project's package.
type Client struct {
	root     string
	manifest domain.Manifest
	run      CommandRunner
	logger   Logger
}

// NewClient creates a Client for the package rooted at root.
func NewClient(root string, manifest domain.Manifest, log Logger) *Client {
	return NewClientWithRunner(root, manifest, ExecRunner, log)
}

// NewClientWithRunner creates a Client with an injected command runner.
func NewClientWithRunner(root string, manifest domain.Manifest, run CommandRunner, log Logger) *Client {
	return &Client{root: root, manifest: manifest, run: run, logger: log}
}

// LocalVersion parses the version declared in the manifest.
func (c *Client) LocalVersion() (*semver.Version, error) {
	if c.manifest.Version == "" {
		return nil, fmt.Errorf("package %s declares no version", c.manifest.Name)
	}
	v, err := semver.NewVersion(c.manifest.Version)
	if err != nil {
		return nil, fmt.Errorf("package %s declares invalid version %q: %w", c.manifest.Name, c.manifest.Version, err)
	}
	return v, nil
}

// LatestPublishedVersion asks the registry for the newest published
// version of the named package. A package the registry has never seen
// resolves to 0.0.0; any other failure wraps domain.ErrStateUnavailable
// so downstream decisions refuse instead of guessing.
func (c *Client) LatestPublishedVersion(ctx context.Context, name string) (*semver.Version, error) {
	out, err := c.run(ctx, c.root, "npm", "view", name, "version")
	if err != nil {
		if strings.Contains(out, "E404") || strings.Contains(out, "404 Not Found") {
			c.logger.Debug(ctx, "package not on registry; treating as never published", map[string]interface{}{
				"package": name,
			})
			return neverPublished, nil
		}
		return nil, fmt.Errorf("%w: registry lookup for %s failed: %s", domain.ErrStateUnavailable, name, out)
	}

	v, err := semver.NewVersion(strings.TrimSpace(out))
	if err != nil {
		return nil, fmt.Errorf("%w: registry returned unparseable version %q for %s", domain.ErrStateUnavailable, out, name)
	}
	return v, nil
}

// BumpVersion increments the manifest version via npm version. npm also
// commits and tags the change when the tree is clean.
func (c *Client) BumpVersion(ctx context.Context, kind domain.BumpKind) domain.ActionResult {
	out, err := c.run(ctx, c.root, "npm", "version", string(kind))
	if err != nil {
		return domain.Failure(domain.ActionVersionBump, failMessage(out, err))
	}
	if out == "" {
		out = "completed successfully"
	}
	return domain.Completed(domain.ActionVersionBump, out)
}

// Publish updates dependencies first, then publishes the package. A
// failed update surfaces as the publish failure.
func (c *Client) Publish(ctx context.Context, dryRun bool) domain.ActionResult {
	if res := c.UpdateDependencies(ctx, dryRun); res.Failed() {
		return res
	}

	args := []string{"publish"}
	if dryRun {
		args = append(args, "--dry-run")
	}

	out, err := c.run(ctx, c.root, "npm", args...)
	if err != nil {
		return domain.Failure(domain.ActionPublish, failMessage(out, err))
	}
	if out == "" {
		out = "completed successfully"
	}
	return domain.Completed(domain.ActionPublish, out)
}

// UpdateDependencies runs npm update.
func (c *Client) UpdateDependencies(ctx context.Context, dryRun bool) domain.ActionResult {
	args := []string{"update"}
	if dryRun {
		args = append(args, "--dry-run")
	}

	out, err := c.run(ctx, c.root, "npm", args...)
	if err != nil {
		return domain.Failure(domain.ActionUpdate, failMessage(out, err))
	}
	return domain.Completed(domain.ActionUpdate, "completed successfully")
}

// Link registers the package into npm's global link namespace.
func (c *Client) Link(ctx context.Context) domain.ActionResult {
	out, err := c.run(ctx, c.root, "npm", "link")
	if err != nil {
		return domain.Failure(domain.ActionLink, failMessage(out, err))
	}
	return domain.Completed(domain.ActionLink, "local npm repo now points to local package")
}

// failMessage prefers the tool's own diagnostics over the exec error.
func failMessage(out string, err error) string {
	if out != "" {
		return out
	}
	return err.Error()
}
