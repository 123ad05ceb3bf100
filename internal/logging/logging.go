// Package logging wires shephard's leveled log output to a rotating file,
// following the bracketed-prefix *log.Logger idiom the rest of the corpus
// uses for daemon-style components.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a coarse severity, ordered least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger is shephard's run-scoped logger: every line carries the run's
// correlation id, and a leveled line additionally carries a repository
// path when one is in scope.
type Logger struct {
	out   *log.Logger
	level Level
	runID string
}

// New opens path for rotating append-only writes via lumberjack (10MB
// files, 3 backups, 28 day retention — the conventional lumberjack
// defaults used across the corpus) and returns a Logger at the given
// level. An empty path logs to stderr only, with no rotation.
func New(path string, level Level, runID string) (*Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj
	}

	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
		runID: runID,
	}, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// WithRepo returns a derived logger whose lines are additionally tagged
// with repo's path.
func (l *Logger) WithRepo(repo string) *RepoLogger {
	return &RepoLogger{logger: l, repo: repo}
}

func (l *Logger) logf(level Level, repo, format string, args ...any) {
	if level < l.level {
		return
	}
	prefix := fmt.Sprintf("[%s] run=%s", level, l.runID)
	if repo != "" {
		prefix += " repo=" + repo
	}
	l.out.Printf("%s %s", prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, "", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, "", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, "", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, "", format, args...) }

// RepoLogger is a Logger bound to one repository path for the duration of
// its sync, so the workflow runner doesn't have to thread the path through
// every call.
type RepoLogger struct {
	logger *Logger
	repo   string
}

func (r *RepoLogger) Debugf(format string, args ...any) {
	r.logger.logf(LevelDebug, r.repo, format, args...)
}
func (r *RepoLogger) Infof(format string, args ...any) {
	r.logger.logf(LevelInfo, r.repo, format, args...)
}
func (r *RepoLogger) Warnf(format string, args ...any) {
	r.logger.logf(LevelWarn, r.repo, format, args...)
}
func (r *RepoLogger) Errorf(format string, args ...any) {
	r.logger.logf(LevelError, r.repo, format, args...)
}
