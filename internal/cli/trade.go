package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trade-confirmer/internal/batch"
	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/logging"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/notation"
	"trade-confirmer/internal/trading"
	"trade-confirmer/pkg/utils"
)

// addTradeCommands adds the parse, build, retype, confirm and strategies
// commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newParseCmd(app))
	rootCmd.AddCommand(newBuildCmd(app))
	rootCmd.AddCommand(newRetypeCmd(app))
	rootCmd.AddCommand(newConfirmCmd(app))
	rootCmd.AddCommand(newStrategiesCmd())
}

func newParseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <notation>",
		Short: "Parse a trade notation",
		Example: `  confirmer parse "Z25 5.00c x3.30 40d"
  confirmer parse Q25 3.65/4.00 cs LIVE`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			raw := strings.Join(args, " ")
			if err := app.validator.ValidateNotation(raw); err != nil {
				return err
			}

			p, err := notation.Parse(raw)
			logging.LogParse(app.Logger, raw, p.StrategyType, err)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(p)
			}
			showParsed(output, p)
			return nil
		},
	}
}

func newBuildCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "build <notation>",
		Short: "Build the trade a notation describes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trade, err := parseAndBuild(app, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return showTradeOrJSON(NewOutput(cmd), trade)
		},
	}
}

func newRetypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retype <notation> <strategy>",
		Short: "Build a notation and change its strategy",
		Example: `  confirmer retype "Q25 3.65/4.00 cs" Straddle`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trade, err := parseAndBuild(app, args[0])
			if err != nil {
				return err
			}
			trade, err = trading.Retype(trade, args[1])
			if err != nil {
				return err
			}
			return showTradeOrJSON(NewOutput(cmd), trade)
		},
	}
}

func newConfirmCmd(app *App) *cobra.Command {
	var (
		prices         []string
		buyers         []string
		sellers        []string
		structurePrice string
		strategy       string
		swap           bool
		save           bool
	)

	cmd := &cobra.Command{
		Use:   "confirm <notation>",
		Short: "Generate confirmation text",
		Long: `Generate the confirmation text for a notation.

Prices are entered per leg slot as LEG:INDEX=VALUE, counting from 0:
  --price 1:0=0.10 --price 1:1=0.053

Counterparties are NAME:QUANTITY and may be repeated. With none given the
configured default buyer and seller are used.`,
		Example: `  confirmer confirm "Q25 3.65/4.00 cs x3.50 20d" --price 1:0=0.10 --structure-price 0.047 --buyer acme:100
  confirmer confirm "Z25 5.00c LIVE" --price 1:0=0.29 --seller globex:50 --save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			item := batch.Item{
				Notation:       strings.Join(args, " "),
				Strategy:       strategy,
				StructurePrice: structurePrice,
				Swap:           swap,
			}
			var err error
			if item.Leg1Prices, item.Leg2Prices, err = priceSlots(prices); err != nil {
				return err
			}
			if item.Buyers, err = parseCounterparties(buyers); err != nil {
				return err
			}
			if item.Sellers, err = parseCounterparties(sellers); err != nil {
				return err
			}
			if err := app.validator.ValidateNotation(item.Notation); err != nil {
				return err
			}
			if err := app.validator.ValidateCounterparties(item.Buyers, item.Sellers); err != nil {
				return err
			}

			trade, text, err := batch.Process(item, app.Generator)
			logging.LogParse(app.Logger, item.Notation, trade.StrategyType, err)
			if err != nil {
				return err
			}

			var id string
			if save || app.Config.Journal.Enabled {
				if id, err = app.record(cmd, item, trade, text); err != nil {
					return err
				}
			}
			logging.LogConfirmation(app.Logger, trade.StrategyType, len(item.Buyers), len(item.Sellers), id)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trade":      trade,
					"text":       text,
					"journal_id": id,
				})
			}
			output.Confirmation(text)
			if id != "" {
				output.Println()
				output.Success("✓ Saved to journal as %s", id)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&prices, "price", nil, "leg price as LEG:INDEX=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&buyers, "buyer", nil, "buyer as NAME:QUANTITY (repeatable)")
	cmd.Flags().StringArrayVar(&sellers, "seller", nil, "seller as NAME:QUANTITY (repeatable)")
	cmd.Flags().StringVar(&structurePrice, "structure-price", "", "solve the one missing price for this structure price")
	cmd.Flags().StringVar(&strategy, "strategy", "", "retype to this strategy before pricing")
	cmd.Flags().BoolVar(&swap, "swap", false, "swap legs before generating")
	cmd.Flags().BoolVar(&save, "save", false, "record the confirmation in the journal")

	return cmd
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the supported strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			defs := catalog.Definitions()
			if output.IsJSON() {
				return output.JSON(defs)
			}

			table := NewTable(output, "Strategy", "Leg 1", "Leg 2")
			for _, def := range defs {
				leg2 := "-"
				if def.Leg2 != nil {
					leg2 = legSpecString(*def.Leg2)
				}
				table.AddRow(def.Name, legSpecString(def.Leg1), leg2)
			}
			table.Render()

			types := make([]string, 0, len(catalog.OptionTypes()))
			for _, t := range catalog.OptionTypes() {
				types = append(types, fmt.Sprintf("%s (%d)", t, catalog.RequiredStrikeCount(t)))
			}
			output.Println()
			output.Dim("Leg types (strikes): %s", strings.Join(types, ", "))
			return nil
		},
	}
}

func legSpecString(spec catalog.LegSpec) string {
	dir := "sell"
	if spec.IsBuy {
		dir = "buy"
	}
	return fmt.Sprintf("%s %s", dir, spec.Type)
}

func parseAndBuild(app *App, raw string) (models.Trade, error) {
	if err := app.validator.ValidateNotation(raw); err != nil {
		return models.Trade{}, err
	}
	p, err := notation.Parse(raw)
	if err != nil {
		logging.LogParse(app.Logger, raw, "", err)
		return models.Trade{}, err
	}
	trade, err := trading.NewBuilder(app.Generator.Exchange()).Build(p)
	logging.LogParse(app.Logger, raw, p.StrategyType, err)
	return trade, err
}

// priceSlots turns LEG:INDEX=VALUE flags into per-leg price lists. Slots
// that are not named stay empty and parse as zero.
func priceSlots(flags []string) ([]string, []string, error) {
	legs := [2][]string{}
	for _, f := range flags {
		leg, idx, value, err := parsePriceFlag(f)
		if err != nil {
			return nil, nil, err
		}
		slots := legs[leg-1]
		for len(slots) <= idx {
			slots = append(slots, "")
		}
		slots[idx] = value
		legs[leg-1] = slots
	}
	return legs[0], legs[1], nil
}

func parsePriceFlag(s string) (leg, idx int, value string, err error) {
	slot, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, "", apperrors.NewValidationError("price", s, "expected LEG:INDEX=VALUE")
	}
	legStr, idxStr, ok := strings.Cut(slot, ":")
	if !ok {
		return 0, 0, "", apperrors.NewValidationError("price", s, "expected LEG:INDEX=VALUE")
	}
	leg, err = strconv.Atoi(strings.TrimSpace(legStr))
	if err != nil || leg < 1 || leg > 2 {
		return 0, 0, "", apperrors.NewValidationError("price", s, "leg must be 1 or 2")
	}
	idx, err = strconv.Atoi(strings.TrimSpace(idxStr))
	if err != nil || idx < 0 || idx > 3 {
		return 0, 0, "", apperrors.NewValidationError("price", s, "index must be between 0 and 3")
	}
	value = strings.TrimSpace(value)
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return 0, 0, "", apperrors.NewValidationError("price", s, "value is not a number")
	}
	return leg, idx, value, nil
}

func parseCounterparties(flags []string) ([]models.Counterparty, error) {
	var out []models.Counterparty
	for _, f := range flags {
		name, qtyStr, ok := strings.Cut(f, ":")
		if !ok {
			return nil, apperrors.NewValidationError("counterparty", f, "expected NAME:QUANTITY")
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil {
			return nil, apperrors.NewValidationError("counterparty", f, "quantity is not a whole number")
		}
		cp := models.Counterparty{Name: strings.TrimSpace(name), Quantity: qty}
		if err := cp.Validate(); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func showParsed(output *Output, p models.ParsedNotation) {
	output.Bold("%s", p.StrategyType)
	output.Printf("  Exchange:    %s\n", orDash(p.Exchange))
	output.Printf("  Expiry:      %s\n", p.Expiry)
	output.Printf("  Strikes:     %s\n", utils.FormatPrices(p.FlatStrikes))
	output.Printf("  Underlying:  %s\n", utils.FormatPrice(p.Underlying))
	output.Printf("  Delta:       %d\n", p.Delta)
	if p.IsVersus {
		output.Printf("  Expiry 2:    %s\n", p.Expiry2)
		output.Printf("  Strikes 2:   %s\n", utils.FormatPrices(p.FlatStrikes2))
		output.Printf("  Underlying 2: %s\n", utils.FormatPrice(p.Underlying2))
		output.Printf("  Delta 2:     %d\n", p.Delta2)
	}
	output.Printf("  Ratio:       %s\n", p.Ratio)
	output.Printf("  Lots:        %d\n", p.Lots)
	output.Printf("  Live:        %v\n", p.IsLive)
	if p.Price != nil {
		output.Printf("  Price:       %s\n", utils.FormatPrice(*p.Price))
	}
}

func showTradeOrJSON(output *Output, trade models.Trade) error {
	if output.IsJSON() {
		return output.JSON(trade)
	}
	showTrade(output, trade)
	return nil
}

func showTrade(output *Output, trade models.Trade) {
	output.Bold("%s", trade.StrategyType)
	output.Dim("%s  ratio %s  %d lots  live %v", orDash(trade.Exchange), trade.Ratio, trade.Lots, trade.IsLive)

	table := NewTable(output, "Leg", "Type", "Side", "Expiry", "Strikes", "Prices", "Underlying", "Delta")
	for i, leg := range trade.Legs() {
		side := "Sell"
		if leg.IsBuy {
			side = "Buy"
		}
		table.AddRow(
			strconv.Itoa(i+1),
			string(leg.Type),
			side,
			leg.Expiry,
			utils.FormatPrices(leg.Strikes),
			utils.FormatPrices(leg.Prices),
			utils.FormatPrice(leg.Underlying),
			strconv.Itoa(leg.Delta),
		)
	}
	table.Render()

	price := trading.StructurePrice(trade)
	output.Printf("Structure price: %s\n", utils.FormatPrice(price))
	if trading.NeedsSwap(trade) {
		output.Warning("Structure prices negative; swap legs before confirming")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
