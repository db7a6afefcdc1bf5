package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trade-confirmer/internal/batch"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Confirmation journal",
		Long:  "Review confirmations recorded with --save or with the journal enabled.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

// record stores one generated confirmation and returns its journal ID.
func (app *App) record(cmd *cobra.Command, item batch.Item, trade models.Trade, text string) (string, error) {
	journal, err := app.Journal()
	if err != nil {
		return "", err
	}
	entry := &models.Confirmation{
		Notation: item.Notation,
		Trade:    trade,
		Buyers:   item.Buyers,
		Sellers:  item.Sellers,
		Text:     text,
	}
	if err := journal.Save(cmd.Context(), entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

func newJournalListCmd(app *App) *cobra.Command {
	var (
		strategy string
		exchange string
		since    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded confirmations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			filter := store.ConfirmationFilter{
				Strategy: strategy,
				Exchange: exchange,
				Limit:    limit,
			}
			if since != "" {
				start, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date %q (use YYYY-MM-DD)", since)
				}
				filter.StartDate = start
			}

			journal, err := app.Journal()
			if err != nil {
				return err
			}
			entries, err := journal.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				if entries == nil {
					entries = []models.Confirmation{}
				}
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Dim("No confirmations recorded")
				return nil
			}

			table := NewTable(output, "ID", "Created", "Strategy", "Exchange", "Notation")
			for _, e := range entries {
				table.AddRow(e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Strategy, e.Exchange, e.Notation)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "only this strategy")
	cmd.Flags().StringVar(&exchange, "exchange", "", "only this exchange")
	cmd.Flags().StringVar(&since, "since", "", "only confirmations on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")

	return cmd
}

func newJournalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.validator.ValidateJournalID(args[0]); err != nil {
				return err
			}
			journal, err := app.Journal()
			if err != nil {
				return err
			}
			entry, err := journal.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(entry)
			}

			output.Dim("%s  %s", entry.ID, entry.CreatedAt.Local().Format(time.RFC1123))
			if entry.Notation != "" {
				output.Info("%s", entry.Notation)
			}
			output.Println()
			output.Confirmation(entry.Text)
			return nil
		},
	}
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one recorded confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.validator.ValidateJournalID(args[0]); err != nil {
				return err
			}
			journal, err := app.Journal()
			if err != nil {
				return err
			}
			if err := journal.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Deleted %s", args[0])
			return nil
		},
	}
}
