package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfaerber/kitchenlog/internal/config"
	"github.com/mfaerber/kitchenlog/internal/export"
	"github.com/mfaerber/kitchenlog/internal/logbook"
	"github.com/mfaerber/kitchenlog/internal/web"
)

func newListCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if dateFlag != "" {
				date, err := resolveDate(dateFlag)
				if err != nil {
					return err
				}
				printEntries(cmd, store.ByDate(date))
				return nil
			}

			printEntries(cmd, store.Entries())
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Only entries beginning on this date (YYYY-MM-DD)")

	return cmd
}

func newShowCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ordinal>",
		Short: "Print one entry in its on-disk text form.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinal, err := parseOrdinal(args[0])
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			entry, err := store.ByOrdinal(ordinal)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), entry.CurrentText())
			return nil
		},
	}
}

func newTemplateCommand(cfg *config.Config) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print starter text for a new entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}
			topic := cfg.Topic
			if topic == "" {
				topic = logbook.DefaultPlaceholderTopic
			}
			fmt.Fprint(cmd.OutOrStdout(), logbook.Template(date, topic))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Begin date for the template (default: today)")

	return cmd
}

func newNewCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an entry from text on stdin.",
		Long:  "new reads complete entry text from stdin, typically a filled-in 'template' output, and saves it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}
			text, err := readEntryText(cmd)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			entry := store.NewEntry(date)
			if err := entry.Reload(text); err != nil {
				return err
			}
			if err := commitAndPublish(ctx, cfg, logger, store, "Added "+entry.SummaryLine()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", entry.SummaryLine())
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Begin date before the text is applied (default: today)")

	return cmd
}

func newEditCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <ordinal>",
		Short: "Replace an entry with text from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinal, err := parseOrdinal(args[0])
			if err != nil {
				return err
			}
			text, err := readEntryText(cmd)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			entry, err := store.ByOrdinal(ordinal)
			if err != nil {
				return err
			}

			if err := entry.Reload(text); err != nil {
				return err
			}
			if err := commitAndPublish(ctx, cfg, logger, store, "Modified "+entry.SummaryLine()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", entry.SummaryLine())
			return nil
		},
	}
}

func newRemoveCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <ordinal>",
		Short: "Delete an entry and its attachments.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinal, err := parseOrdinal(args[0])
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			entry, err := store.ByOrdinal(ordinal)
			if err != nil {
				return err
			}

			entry.MarkForRemoval()
			if err := commitAndPublish(ctx, cfg, logger, store, "Removed "+entry.SummaryLine()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", entry.SummaryLine())
			return nil
		},
	}
}

func newAttachCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <ordinal> <file>",
		Short: "Add a media file to an entry.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinal, err := parseOrdinal(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			entry, err := store.ByOrdinal(ordinal)
			if err != nil {
				return err
			}

			name := filepath.Base(args[1])
			if err := entry.Attach(name, data); err != nil {
				return err
			}
			if err := commitAndPublish(ctx, cfg, logger, store, "Modified "+entry.SummaryLine()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to %s\n", name, entry.SummaryLine())
			return nil
		},
	}
}

func newDetachCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <ordinal> <media-index>",
		Short: "Remove a media file from an entry.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ordinal, err := parseOrdinal(args[0])
			if err != nil {
				return err
			}
			mediaIndex, err := parseOrdinal(args[1])
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			entry, err := store.ByOrdinal(ordinal)
			if err != nil {
				return err
			}

			if err := entry.DetachByOrdinal(mediaIndex); err != nil {
				return err
			}
			if err := commitAndPublish(ctx, cfg, logger, store, "Modified "+entry.SummaryLine()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detached media %d from %s\n", mediaIndex, entry.SummaryLine())
			return nil
		},
	}
}

func newExportCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var targetFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the whole log as dokuwiki pages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := targetFlag
			if target == "" {
				target = cfg.ExportDir
			}
			if target == "" {
				return fmt.Errorf("no export target configured")
			}

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			exporter := &export.Exporter{Target: target, Loc: export.German}
			if err := exporter.Export(store.Entries()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(store.Entries()), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "", "Export directory (default: KITCHENLOG_EXPORT)")

	return cmd
}

func newServeCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form for browsing and editing entries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			addr := addrFlag
			if addr == "" {
				addr = cfg.ListenAddr
			}

			handler := web.New(store, syncerFor(cfg, logger), logger)
			logger.Info("serving web form", "addr", addr)
			return http.ListenAndServe(addr, handler)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default: KITCHENLOG_LISTEN)")

	return cmd
}
