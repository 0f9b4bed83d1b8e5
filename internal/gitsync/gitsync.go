// Package gitsync keeps the entry directory in step with its git remote.
// Multi-actor consistency is delegated entirely to git: the store itself
// never coordinates writers.
package gitsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes one git invocation in dir and returns its combined output.
// Tests substitute a stub here.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

func execGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Syncer wraps the pull-before / commit-and-push-after cycle around store
// commits.
type Syncer struct {
	dir    string
	run    Runner
	logger *slog.Logger
}

// New returns a Syncer for the repository at dir.
func New(dir string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Syncer{dir: dir, run: execGit, logger: logger}
}

// WithRunner swaps the git invocation function. Intended for tests.
func (s *Syncer) WithRunner(run Runner) *Syncer {
	s.run = run
	return s
}

// Pull brings the local tree up to date before a store is opened.
func (s *Syncer) Pull(ctx context.Context) error {
	out, err := s.run(ctx, s.dir, "pull", "--rebase")
	if err != nil {
		return fmt.Errorf("git pull: %w: %s", err, strings.TrimSpace(string(out)))
	}
	s.logger.Debug("pulled entry repository", "dir", s.dir)
	return nil
}

// Publish stages everything, commits with the given message, and pushes.
// A commit with nothing staged is not an error: the push still runs so a
// previously unpushed commit gets out.
func (s *Syncer) Publish(ctx context.Context, message string) error {
	if out, err := s.run(ctx, s.dir, "add", "-A"); err != nil {
		return fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(string(out)))
	}

	out, err := s.run(ctx, s.dir, "commit", "-m", message)
	if err != nil {
		if !strings.Contains(string(out), "nothing to commit") {
			return fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(out)))
		}
		s.logger.Debug("nothing to commit", "dir", s.dir)
	}

	if out, err := s.run(ctx, s.dir, "push"); err != nil {
		return fmt.Errorf("git push: %w: %s", err, strings.TrimSpace(string(out)))
	}
	s.logger.Info("published entry repository", "dir", s.dir, "message", message)
	return nil
}
