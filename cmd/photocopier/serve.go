package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"photocopier/internal/api"
	"photocopier/internal/infra/dialog"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the copy engine over HTTP for the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bind") {
				cfg.API.Bind = strings.TrimSpace(bind)
			}
			if cmd.Flags().Changed("allow-origin") {
				cfg.API.AllowOrigins = trimAll(origins)
			}
			if !cfg.Verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			logger := ctx.logger(cfg)
			server := api.NewServer(ctx.service(cfg, dialog.Unavailable{}), cfg, logger)
			httpServer := &http.Server{
				Addr:              cfg.API.Bind,
				Handler:           server.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Infof("Listening on http://%s", cfg.API.Bind)
				serveErr <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Errorf("serve %s: %w", cfg.API.Bind, err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			logger.Infof("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("HTTP shutdown: %v", err)
			}
			server.Shutdown(shutdownCtx)
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config, 127.0.0.1:7480)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Origins allowed by CORS (empty allows all)")
	return cmd
}
