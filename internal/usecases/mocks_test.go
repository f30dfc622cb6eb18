package usecases

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockVCS implements domain.VersionControlClient, recording the order of
// mutating calls and returning configured results.
type mockVCS struct {
	dirty       bool
	hasBranch   bool
	hasRemote   bool
	ahead       int
	behind      int
	commitRes   domain.ActionResult
	pushRes     domain.ActionResult
	pullRes     domain.ActionResult
	resetRes    domain.ActionResult
	calls       []string
	lastMessage string
	lastDryRun  bool
}

func newMockVCS() *mockVCS {
	return &mockVCS{
		hasBranch: true,
		hasRemote: true,
		commitRes: domain.Completed(domain.ActionCommit, "ok"),
		pushRes:   domain.Completed(domain.ActionPush, "ok"),
		pullRes:   domain.Completed(domain.ActionPull, "ok"),
		resetRes:  domain.Completed(domain.ActionReset, "ok"),
	}
}

func (m *mockVCS) IsDirty() (bool, error)         { return m.dirty, nil }
func (m *mockVCS) HasBranch(string) (bool, error) { return m.hasBranch, nil }
func (m *mockVCS) HasRemote(string) (bool, error) { return m.hasRemote, nil }

func (m *mockVCS) AheadCount(context.Context, string, string) (int, error) {
	return m.ahead, nil
}

func (m *mockVCS) BehindCount(context.Context, string, string) (int, error) {
	return m.behind, nil
}

func (m *mockVCS) Commit(_ context.Context, msg string, dryRun bool) domain.ActionResult {
	m.calls = append(m.calls, "commit")
	m.lastMessage = msg
	m.lastDryRun = dryRun
	return m.commitRes
}

func (m *mockVCS) Push(_ context.Context, _, _ string, dryRun bool) domain.ActionResult {
	m.calls = append(m.calls, "push")
	m.lastDryRun = dryRun
	return m.pushRes
}

func (m *mockVCS) Pull(_ context.Context, _, _ string) domain.ActionResult {
	m.calls = append(m.calls, "pull")
	return m.pullRes
}

func (m *mockVCS) ResetWorkingTree(_ context.Context) domain.ActionResult {
	m.calls = append(m.calls, "reset")
	return m.resetRes
}

// mockPkg implements domain.PackageClient.
type mockPkg struct {
	localVersion *semver.Version
	publishedVer *semver.Version
	publishedErr error
	lookupCalls  int
	bumpRes      domain.ActionResult
	publishRes   domain.ActionResult
	updateRes    domain.ActionResult
	linkRes      domain.ActionResult
	calls        []string
	lastBump     domain.BumpKind
	lastDryRun   bool
}

func newMockPkg() *mockPkg {
	return &mockPkg{
		localVersion: semver.MustParse("1.0.0"),
		publishedVer: semver.MustParse("1.0.0"),
		bumpRes:      domain.Completed(domain.ActionVersionBump, "ok"),
		publishRes:   domain.Completed(domain.ActionPublish, "ok"),
		updateRes:    domain.Completed(domain.ActionUpdate, "ok"),
		linkRes:      domain.Completed(domain.ActionLink, "ok"),
	}
}

func (m *mockPkg) LocalVersion() (*semver.Version, error) { return m.localVersion, nil }

func (m *mockPkg) LatestPublishedVersion(context.Context, string) (*semver.Version, error) {
	m.lookupCalls++
	if m.publishedErr != nil {
		return nil, m.publishedErr
	}
	return m.publishedVer, nil
}

func (m *mockPkg) BumpVersion(_ context.Context, kind domain.BumpKind) domain.ActionResult {
	m.calls = append(m.calls, "version")
	m.lastBump = kind
	return m.bumpRes
}

func (m *mockPkg) Publish(_ context.Context, dryRun bool) domain.ActionResult {
	m.calls = append(m.calls, "publish")
	m.lastDryRun = dryRun
	return m.publishRes
}

func (m *mockPkg) UpdateDependencies(_ context.Context, dryRun bool) domain.ActionResult {
	m.calls = append(m.calls, "update")
	m.lastDryRun = dryRun
	return m.updateRes
}

func (m *mockPkg) Link(_ context.Context) domain.ActionResult {
	m.calls = append(m.calls, "link")
	return m.linkRes
}

// recordingReporter implements domain.Reporter for testing.
type recordingReporter struct {
	projects  []string
	results   []domain.ActionResult
	summaries []domain.Summary
}

func (r *recordingReporter) BeginProject(name string) { r.projects = append(r.projects, name) }
func (r *recordingReporter) Report(res domain.ActionResult) {
	r.results = append(r.results, res)
}
func (r *recordingReporter) Summarize(_ domain.ActionKind, s domain.Summary) {
	r.summaries = append(r.summaries, s)
}

// testProject assembles a Project around mock clients.
func testProject(st domain.ProjectState, vcs *mockVCS, pkg *mockPkg) *domain.Project {
	return &domain.Project{
		Root:     "/tmp/proj",
		Manifest: domain.Manifest{Name: st.Name, Version: "1.0.0"},
		Branch:   "master",
		Remote:   "nexus",
		State:    st,
		VCS:      vcs,
		Pkg:      pkg,
	}
}
