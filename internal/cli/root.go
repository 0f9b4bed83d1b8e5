package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mfaerber/kitchenlog/internal/config"
	"github.com/mfaerber/kitchenlog/internal/logbook"
	"github.com/mfaerber/kitchenlog/internal/ui"
	"github.com/mfaerber/kitchenlog/internal/version"
)

// NewRootCommand creates the top-level Cobra command hosting subcommands and
// the TUI browser.
func NewRootCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kitchenlog",
		Short:   "Browse and edit the dated kitchen log from your terminal.",
		Version: version.Info(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			m := ui.NewModel(store)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newListCommand(ctx, cfg, logger),
		newShowCommand(ctx, cfg, logger),
		newTemplateCommand(cfg),
		newNewCommand(ctx, cfg, logger),
		newEditCommand(ctx, cfg, logger),
		newRemoveCommand(ctx, cfg, logger),
		newAttachCommand(ctx, cfg, logger),
		newDetachCommand(ctx, cfg, logger),
		newExportCommand(ctx, cfg, logger),
		newServeCommand(ctx, cfg, logger),
	)

	return cmd
}

// ExecuteCommand loads configuration and executes the Cobra root command.
func ExecuteCommand(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cmd := NewRootCommand(ctx, cfg, logger)
	return cmd.Execute()
}

// Main is a helper used by cmd/kitchenlog/main.go to keep wiring contained in
// one package.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStore pulls the repository when git sync is enabled, then scans it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*logbook.Store, error) {
	if syncer := syncerFor(cfg, logger); syncer != nil {
		if err := syncer.Pull(ctx); err != nil {
			return nil, err
		}
	}
	return logbook.Open(cfg.RepoDir, logbook.Options{
		Logger:           logger,
		PlaceholderTopic: cfg.Topic,
	})
}
