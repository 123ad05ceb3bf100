// Package report renders workflow results to the terminal and computes
// the process exit code, grounded on original_source/src/report.rs.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/shephard/internal/workflow"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	noopStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Summary tallies outcomes across a run.
type Summary struct {
	Success int
	NoOp    int
	Failed  int
}

func Summarize(results []workflow.RepoResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case workflow.StatusSuccess:
			s.Success++
		case workflow.StatusNoOp:
			s.NoOp++
		case workflow.StatusFailed:
			s.Failed++
		}
	}
	return s
}

// PrintRunSummary writes the per-repository lines and the trailing totals
// line to w, colorizing the [OK|NOOP|FAIL] tag when w is a terminal-style
// sink (lipgloss degrades to plain text automatically when not a TTY).
func PrintRunSummary(w io.Writer, results []workflow.RepoResult) {
	for _, r := range results {
		fmt.Fprintf(w, "[%s] %s :: %s\n", styledState(r.Status), r.Repo, r.Message)
	}

	summary := Summarize(results)
	fmt.Fprintf(w, "Processed %d repos: %d success, %d no-op, %d failed\n",
		len(results), summary.Success, summary.NoOp, summary.Failed)
}

func styledState(status workflow.RepoStatus) string {
	switch status {
	case workflow.StatusSuccess:
		return okStyle.Render("OK")
	case workflow.StatusNoOp:
		return noopStyle.Render("NOOP")
	default:
		return failStyle.Render("FAIL")
	}
}

// ExitCode returns 1 if any repository failed, else 0.
func ExitCode(results []workflow.RepoResult) int {
	for _, r := range results {
		if r.Status == workflow.StatusFailed {
			return 1
		}
	}
	return 0
}
