// Package report renders action results and batch summaries for the CLI.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/nexus-switchboard/nex/internal/domain"
)

// Writer implements domain.Reporter, rendering results as
// "[c]/[e]/[w] kind: message" lines with per-outcome colors.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Writer that renders to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	errMark  = color.New(color.FgRed).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	heading  = color.New(color.Bold).SprintFunc()
	label    = color.New(color.Bold, color.FgGreen).SprintFunc()
)

// Banner prints the invocation header: tool name and the effective
// configuration the run uses.
func (w *Writer) Banner(path, project, projType string, dryRun bool) {
	fmt.Fprintln(w.out, heading("Nexus Builder"))
	fmt.Fprintln(w.out, "--------------------------")
	fmt.Fprintf(w.out, "%s\t\t%s\n", label("path"), path)
	fmt.Fprintf(w.out, "%s\t\t%v\n", label("dry_run"), dryRun)
	fmt.Fprintf(w.out, "%s\t\t%s\n", label("project"), orDefault(project, "all"))
	fmt.Fprintf(w.out, "%s\t\t%s\n", label("type"), orDefault(projType, "N/A"))
	fmt.Fprintln(w.out, "--------------------------")
}

// BeginProject marks the start of one project's result stream.
func (w *Writer) BeginProject(name string) {
	fmt.Fprintf(w.out, "%s:\n", heading(name))
}

// Report renders one action result.
func (w *Writer) Report(res domain.ActionResult) {
	fmt.Fprintf(w.out, "\t%s %s: %s\n", mark(res.Outcome), res.Kind, res.Message)
}

// Summarize renders the batch tally for summary-style workflows.
func (w *Writer) Summarize(kind domain.ActionKind, s domain.Summary) {
	fmt.Fprintf(w.out, "%s %s: completed with %d out of %d succeeding\n",
		mark(domain.OutcomeSuccess), kind, s.Succeeded, s.Total)
}

// ProjectLine renders one row of the list output.
func (w *Writer) ProjectLine(st *domain.ProjectState) {
	cleanliness := "Clean"
	if st.IsDirty {
		cleanliness = "Dirty"
	}
	fmt.Fprintf(w.out, "%s - v%s -> %s, Behind Remote: %d, Ahead of Remote: %d\n",
		st.Name, st.LocalVersion, cleanliness, st.CommitsBehind, st.CommitsAhead)
}

func mark(o domain.Outcome) string {
	switch o {
	case domain.OutcomeSuccess:
		return okMark("[c]")
	case domain.OutcomeAdvisory:
		return warnMark("[w]")
	default:
		return errMark("[e]")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
