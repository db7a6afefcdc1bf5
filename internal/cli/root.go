package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"trade-confirmer/internal/config"
	"trade-confirmer/internal/confirm"
	"trade-confirmer/internal/logging"
	"trade-confirmer/internal/security"
	"trade-confirmer/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Generator *confirm.Generator

	journal   store.Journal
	validator *security.InputValidator
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// before any subcommand runs, from --config or the default directory.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop(), validator: security.NewInputValidator()}

	rootCmd := &cobra.Command{
		Use:   "confirmer",
		Short: "Trade Confirmer - commodity options confirmations from shorthand",
		Long: `Trade Confirmer turns broker shorthand such as "Z25 5.00c x3.30 40d"
into structured option trades and renders the confirmation text each
counterparty receives.

Use 'confirmer strategies' to list the supported structures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-confirmer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addBatchCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addServeCommands(rootCmd, app)

	return rootCmd
}

func (app *App) init(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	logCfg := cfg.LoggingConfig()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
	}
	if !cfg.UI.ColorEnabled {
		color.NoColor = true
	}

	app.Config = cfg
	app.Logger = logging.NewLoggerWithConfig(logCfg)
	app.Generator = confirm.NewGenerator(confirm.Options{
		Exchange:      cfg.Defaults.Exchange,
		BuyerName:     cfg.Defaults.BuyerName,
		SellerName:    cfg.Defaults.SellerName,
		Quantity:      cfg.Defaults.Quantity,
		HedgeFallback: decimal.NewFromFloat(cfg.Defaults.HedgeFallback),
	})
	cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))

	app.Logger.Debug().Str("config", cfg.Path).Msg("Configuration loaded")
	return nil
}

// Journal opens the confirmation journal on first use.
func (app *App) Journal() (store.Journal, error) {
	if app.journal != nil {
		return app.journal, nil
	}
	j, err := store.NewSQLiteStore(app.Config.Journal.Path)
	if err != nil {
		return nil, err
	}
	app.journal = j
	app.Logger.Debug().Str("path", app.Config.Journal.Path).Msg("Journal opened")
	return j, nil
}

// Close releases the journal if it was opened.
func (app *App) Close() error {
	if app.journal == nil {
		return nil
	}
	err := app.journal.Close()
	app.journal = nil
	return err
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Confirmer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and check the application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Path})
			} else {
				output.Println(app.Config.Path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Defaults")
	output.Printf("  Exchange:        %s\n", cfg.Defaults.Exchange)
	output.Printf("  Quantity:        %d\n", cfg.Defaults.Quantity)
	output.Printf("  Buyer / Seller:  %s / %s\n", cfg.Defaults.BuyerName, cfg.Defaults.SellerName)
	output.Printf("  Hedge Fallback:  %g\n", cfg.Defaults.HedgeFallback)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:         %v\n", cfg.Journal.Enabled)
	output.Printf("  Path:            %s\n", cfg.Journal.Path)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Cache Max Cost:  %d\n", cfg.Server.CacheMaxCost)
	output.Printf("  Session TTL:     %s\n", cfg.Server.SessionTTL)
	output.Printf("  CORS Origin:     %s\n", cfg.Server.CORSOrigin)
	output.Println()

	output.Bold("Batch")
	output.Printf("  Workers:         %d\n", cfg.Batch.Workers)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Log.Level)
	output.Printf("  File:            %s\n", fileSetting(cfg.Log.File, cfg.Log.Path))
}

func fileSetting(enabled bool, path string) string {
	if !enabled {
		return "off"
	}
	return fmt.Sprintf("on (%s)", path)
}
