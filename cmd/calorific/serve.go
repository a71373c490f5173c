package calorific

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/api"
	"github.com/izikbr/calorific2-app/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for the web client",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := settings.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		return withDB(func(sqldb *sql.DB) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			est, closeCache, err := estimateConfig(ctx, sqldb)
			if err != nil {
				logger.WithError(err).Warn("estimates disabled")
				est = service.EstimateConfig{Log: logger}
			}
			defer closeCache()
			products, closeProductCache := barcodeConfig(ctx, sqldb)
			defer closeProductCache()

			gin.SetMode(gin.ReleaseMode)
			srv := &api.Server{
				DB:           sqldb,
				Estimate:     est,
				Products:     products,
				Log:          logger,
				AllowOrigins: settings.Server.AllowOrigins,
				Version:      Version,
			}
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", addr).Info("listening")
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address (default from server.addr)")
}
