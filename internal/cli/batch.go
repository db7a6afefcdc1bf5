package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trade-confirmer/internal/batch"
	"trade-confirmer/internal/logging"
)

// addBatchCommands adds the batch command.
func addBatchCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBatchCmd(app))
}

func newBatchCmd(app *App) *cobra.Command {
	var (
		workers int
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Generate confirmations for every notation in a YAML file",
		Long: `Generate confirmations for a list of notations.

The file holds a "confirmations" list; each entry takes a notation and
optionally strategy, leg1_prices, leg2_prices, structure_price, swap,
buyers and sellers. Output keeps the input order. A failed entry is
reported and does not stop the others.`,
		Example: `  confirmer batch morning.yaml --workers 8`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening batch file: %w", err)
			}
			defer f.Close()

			items, err := batch.Load(f)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = app.Config.Batch.Workers
			}
			logger := logging.WithOperation(app.Logger, "batch")
			results, err := batch.NewRunner(app.Generator, workers, logger).Run(cmd.Context(), items)
			if err != nil {
				return err
			}

			failed := 0
			for i, res := range results {
				if res.Err != nil {
					failed++
					continue
				}
				if save || app.Config.Journal.Enabled {
					id, err := app.record(cmd, items[i], *res.Trade, res.Text)
					if err != nil {
						return err
					}
					logging.LogConfirmation(logger, res.Trade.StrategyType, len(items[i].Buyers), len(items[i].Sellers), id)
				}
			}

			if output.IsJSON() {
				if err := output.JSON(results); err != nil {
					return err
				}
			} else {
				for i, res := range results {
					if i > 0 {
						output.Println()
					}
					output.Info("# %d: %s", res.Index+1, res.Notation)
					if res.Err != nil {
						output.Error("%v", res.Err)
						continue
					}
					output.Confirmation(res.Text)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d confirmations failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "notations processed in parallel (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "record every confirmation in the journal")

	return cmd
}
