package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfaerber/kitchenlog/internal/config"
	"github.com/mfaerber/kitchenlog/internal/gitsync"
	"github.com/mfaerber/kitchenlog/internal/logbook"
)

func resolveDate(dateFlag string) (time.Time, error) {
	if dateFlag == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	parsed, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return parsed, nil
}

func parseOrdinal(arg string) (int, error) {
	ordinal, err := strconv.Atoi(arg)
	if err != nil || ordinal < 0 {
		return 0, fmt.Errorf("ordinal must be a non-negative integer")
	}
	return ordinal, nil
}

func readEntryText(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read entry text: %w", err)
	}
	return string(data), nil
}

func syncerFor(cfg *config.Config, logger *slog.Logger) *gitsync.Syncer {
	if !cfg.GitSync {
		return nil
	}
	return gitsync.New(cfg.RepoDir, logger)
}

// commitAndPublish saves all dirty entries and, when git sync is enabled,
// pushes the result with the given message.
func commitAndPublish(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *logbook.Store, message string) error {
	if err := store.Commit(); err != nil {
		return err
	}
	if syncer := syncerFor(cfg, logger); syncer != nil {
		if err := syncer.Publish(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func printEntries(cmd *cobra.Command, entries []*logbook.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "(no entries)")
		return
	}
	for i, e := range entries {
		if e.IsRemoved() {
			continue
		}
		fmt.Fprintf(out, "%d. %s\n", i, e.SummaryLine())
	}
}
