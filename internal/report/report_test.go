package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/steveyegge/shephard/internal/workflow"
)

func TestPrintRunSummaryFormat(t *testing.T) {
	results := []workflow.RepoResult{
		{Repo: "/tmp/a", Status: workflow.StatusSuccess, Message: "pull ok, committed, pushed"},
		{Repo: "/tmp/b", Status: workflow.StatusNoOp, Message: "pull ok, nothing to commit"},
		{Repo: "/tmp/c", Status: workflow.StatusFailed, Message: "pull failed: conflict"},
	}

	var buf bytes.Buffer
	PrintRunSummary(&buf, results)
	out := buf.String()

	if !strings.Contains(out, "Processed 3 repos: 1 success, 1 no-op, 1 failed") {
		t.Errorf("summary line missing from output:\n%s", out)
	}
	if !strings.Contains(out, "/tmp/a") || !strings.Contains(out, "/tmp/b") || !strings.Contains(out, "/tmp/c") {
		t.Errorf("per-repo lines missing from output:\n%s", out)
	}
}

func TestExitCode(t *testing.T) {
	clean := []workflow.RepoResult{{Status: workflow.StatusSuccess}, {Status: workflow.StatusNoOp}}
	if code := ExitCode(clean); code != 0 {
		t.Errorf("ExitCode(clean) = %d, want 0", code)
	}

	withFailure := append(clean, workflow.RepoResult{Status: workflow.StatusFailed})
	if code := ExitCode(withFailure); code != 1 {
		t.Errorf("ExitCode(withFailure) = %d, want 1", code)
	}
}

func TestSummarize(t *testing.T) {
	results := []workflow.RepoResult{
		{Status: workflow.StatusSuccess}, {Status: workflow.StatusSuccess},
		{Status: workflow.StatusNoOp}, {Status: workflow.StatusFailed},
	}
	s := Summarize(results)
	if s.Success != 2 || s.NoOp != 1 || s.Failed != 1 {
		t.Errorf("Summarize() = %+v, want {2 1 1}", s)
	}
}
