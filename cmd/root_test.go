package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockVCS implements domain.VersionControlClient with canned state.
type mockVCS struct {
	dirty  bool
	ahead  int
	behind int
	calls  []string
}

func (m *mockVCS) IsDirty() (bool, error)         { return m.dirty, nil }
func (m *mockVCS) HasBranch(string) (bool, error) { return true, nil }
func (m *mockVCS) HasRemote(string) (bool, error) { return true, nil }
func (m *mockVCS) AheadCount(context.Context, string, string) (int, error) {
	return m.ahead, nil
}
func (m *mockVCS) BehindCount(context.Context, string, string) (int, error) {
	return m.behind, nil
}
func (m *mockVCS) Commit(context.Context, string, bool) domain.ActionResult {
	m.calls = append(m.calls, "commit")
	return domain.Completed(domain.ActionCommit, "ok")
}
func (m *mockVCS) Push(context.Context, string, string, bool) domain.ActionResult {
	m.calls = append(m.calls, "push")
	return domain.Completed(domain.ActionPush, "ok")
}
func (m *mockVCS) Pull(context.Context, string, string) domain.ActionResult {
	m.calls = append(m.calls, "pull")
	return domain.Completed(domain.ActionPull, "ok")
}
func (m *mockVCS) ResetWorkingTree(context.Context) domain.ActionResult {
	m.calls = append(m.calls, "reset")
	return domain.Completed(domain.ActionReset, "ok")
}

// mockPkg implements domain.PackageClient with canned versions.
type mockPkg struct {
	local     string
	published string
	calls     []string
}

func (m *mockPkg) LocalVersion() (*semver.Version, error) {
	return semver.NewVersion(m.local)
}
func (m *mockPkg) LatestPublishedVersion(context.Context, string) (*semver.Version, error) {
	return semver.NewVersion(m.published)
}
func (m *mockPkg) BumpVersion(context.Context, domain.BumpKind) domain.ActionResult {
	m.calls = append(m.calls, "version")
	return domain.Completed(domain.ActionVersionBump, "ok")
}
func (m *mockPkg) Publish(context.Context, bool) domain.ActionResult {
	m.calls = append(m.calls, "publish")
	return domain.Completed(domain.ActionPublish, "ok")
}
func (m *mockPkg) UpdateDependencies(context.Context, bool) domain.ActionResult {
	m.calls = append(m.calls, "update")
	return domain.Completed(domain.ActionUpdate, "ok")
}
func (m *mockPkg) Link(context.Context) domain.ActionResult {
	m.calls = append(m.calls, "link")
	return domain.Completed(domain.ActionLink, "ok")
}

// recordingReporter records the rendered stream instead of printing it.
type recordingReporter struct {
	banners   int
	projects  []string
	results   []domain.ActionResult
	lines     []string
	summaries []domain.Summary
}

func (r *recordingReporter) Banner(string, string, string, bool) { r.banners++ }
func (r *recordingReporter) BeginProject(name string)            { r.projects = append(r.projects, name) }
func (r *recordingReporter) Report(res domain.ActionResult)      { r.results = append(r.results, res) }
func (r *recordingReporter) ProjectLine(st *domain.ProjectState) {
	r.lines = append(r.lines, st.Name)
}
func (r *recordingReporter) Summarize(_ domain.ActionKind, s domain.Summary) {
	r.summaries = append(r.summaries, s)
}

// testHarness bundles the mocks behind a Dependencies value.
type testHarness struct {
	deps *Dependencies
	vcs  *mockVCS
	pkg  *mockPkg
	rep  *recordingReporter
}

func newTestHarness(vcs *mockVCS, pkg *mockPkg) *testHarness {
	rep := &recordingReporter{}
	return &testHarness{
		deps: &Dependencies{
			LoggerFactory: func() Logger { return &mockLogger{} },
			VCSFactory: func(string) (domain.VersionControlClient, error) {
				return vcs, nil
			},
			PkgFactory: func(string, domain.Manifest) domain.PackageClient {
				return pkg
			},
			ReporterFactory: func(_ io.Writer) Reporter {
				return rep
			},
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		},
		vcs: vcs,
		pkg: pkg,
		rep: rep,
	}
}

// writeProject drops a nexus package.json under root.
func writeProject(t *testing.T, root, dir, contents string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "package.json"), []byte(contents), 0o644))
}

// run executes the CLI with the given args against the harness.
func run(t *testing.T, h *testHarness, args ...string) error {
	t.Helper()
	root := NewRootCmdWithDeps(h.deps)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "nexus-core", "version": "1.0.0"}`)

	h := newTestHarness(&mockVCS{}, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", dir, "list"))

	assert.Equal(t, 1, h.rep.banners)
	assert.Equal(t, []string{"nexus-core"}, h.rep.lines)
}

func TestListCommand_NoProjects(t *testing.T) {
	h := newTestHarness(&mockVCS{}, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", t.TempDir(), "list"))

	require.Len(t, h.rep.results, 1)
	assert.Contains(t, h.rep.results[0].Message, "unable to find any nexus projects")
}

func TestCommitCommand_RequiresMessage(t *testing.T) {
	h := newTestHarness(&mockVCS{}, &mockPkg{local: "1.0.0", published: "1.0.0"})

	err := run(t, h, "--root", t.TempDir(), "commit")

	assert.Error(t, err)
}

func TestCommitCommand(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "nexus-core", "version": "1.0.0"}`)

	vcs := &mockVCS{dirty: true}
	h := newTestHarness(vcs, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", dir, "commit", "-m", "checkpoint"))

	assert.Equal(t, []string{"commit"}, vcs.calls)
	assert.Equal(t, []string{"nexus-core"}, h.rep.projects)
}

func TestDeployCommand_FullPlan(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "nexus-core", "version": "1.0.0"}`)

	vcs := &mockVCS{dirty: true}
	pkg := &mockPkg{local: "1.0.0", published: "1.0.0"}
	h := newTestHarness(vcs, pkg)

	require.NoError(t, run(t, h, "--root", dir, "deploy", "-m", "release prep"))

	assert.Equal(t, []string{"commit", "push"}, vcs.calls)
	assert.Equal(t, []string{"version", "publish"}, pkg.calls)

	require.Len(t, h.rep.results, 4)
	kinds := []domain.ActionKind{
		h.rep.results[0].Kind, h.rep.results[1].Kind,
		h.rep.results[2].Kind, h.rep.results[3].Kind,
	}
	assert.Equal(t, []domain.ActionKind{
		domain.ActionCommit, domain.ActionVersionBump,
		domain.ActionPush, domain.ActionPublish,
	}, kinds)
}

func TestDeployCommand_DivergedProjectRefuses(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "nexus-core", "version": "1.0.0"}`)

	vcs := &mockVCS{ahead: 3, behind: 2}
	h := newTestHarness(vcs, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", dir, "deploy"))

	require.Len(t, h.rep.results, 1)
	assert.True(t, h.rep.results[0].Failed())
	assert.Contains(t, h.rep.results[0].Message, "diverged")
	assert.Empty(t, vcs.calls)
}

func TestDeployCommand_RejectsBadBumpKind(t *testing.T) {
	h := newTestHarness(&mockVCS{}, &mockPkg{local: "1.0.0", published: "1.0.0"})

	err := run(t, h, "--root", t.TempDir(), "deploy", "-t", "enormous")

	assert.Error(t, err)
}

func TestSyncCommand_Summary(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "nexus-core", "version": "1.0.0"}`)
	writeProject(t, dir, "extend", `{"name": "nexus-extend", "version": "1.0.0"}`)

	vcs := &mockVCS{ahead: 1}
	h := newTestHarness(vcs, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", dir, "sync"))

	require.Len(t, h.rep.summaries, 1)
	assert.Equal(t, domain.Summary{Succeeded: 2, Total: 2}, h.rep.summaries[0])
	assert.Equal(t, []string{"push", "push"}, vcs.calls)
}

func TestProjectFilterFlag(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "core", `{"name": "@nexus-switchboard/nexus-core", "version": "1.0.0"}`)
	writeProject(t, dir, "extend", `{"name": "@nexus-switchboard/nexus-extend", "version": "1.0.0"}`)

	h := newTestHarness(&mockVCS{}, &mockPkg{local: "1.0.0", published: "1.0.0"})

	require.NoError(t, run(t, h, "--root", dir, "--project", "nexus-core", "list"))

	assert.Equal(t, []string{"@nexus-switchboard/nexus-core"}, h.rep.lines)
}

func TestMissingDependencies(t *testing.T) {
	root := NewRootCmdWithDeps(nil)
	root.SetArgs([]string{"list"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}
