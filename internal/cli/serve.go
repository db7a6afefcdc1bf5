package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trade-confirmer/internal/server"
	"trade-confirmer/internal/store"
)

// addServeCommands adds the serve command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the confirmer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			var journal store.Journal
			if app.Config.Journal.Enabled {
				j, err := app.Journal()
				if err != nil {
					return err
				}
				journal = j
			}

			if debug, _ := cmd.Flags().GetBool("debug"); !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv, err := server.NewServer(server.Options{
				CacheMaxCost: app.Config.Server.CacheMaxCost,
				SessionTTL:   app.Config.Server.SessionTTL,
				CORSOrigin:   app.Config.Server.CORSOrigin,
				Generator:    app.Generator,
				Journal:      journal,
				Logger:       app.Logger,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.R,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				app.Logger.Info().Str("addr", addr).Msg("HTTP server listening")
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})

			output.Info("Listening on %s (Ctrl+C to stop)", addr)
			if err := g.Wait(); err != nil {
				return err
			}
			app.Logger.Info().Msg("HTTP server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
