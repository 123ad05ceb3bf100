package message

import (
	"strings"
	"testing"
	"time"
)

func TestFormatScope(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.FixedZone("", 0))

	tracked := Format("sync {scope}", false, now)
	if !strings.Contains(tracked, "tracked") {
		t.Errorf("Format(...) = %q, want it to contain %q", tracked, "tracked")
	}

	all := Format("sync {scope}", true, now)
	if !strings.Contains(all, "all") {
		t.Errorf("Format(...) = %q, want it to contain %q", all, "all")
	}
}

func TestFormatUnknownPlaceholderLeftVerbatim(t *testing.T) {
	now := time.Now()
	got := Format("{unknown} stays", false, now)
	if !strings.HasPrefix(got, "{unknown}") {
		t.Errorf("Format(...) = %q, want unknown placeholder preserved", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.FixedZone("", 0))
	got := Format("{timestamp}", false, now)
	if !strings.Contains(got, "2026-03-04 10:30:00") {
		t.Errorf("Format(...) = %q, want it to contain the formatted timestamp", got)
	}
}
