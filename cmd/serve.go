package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/fyerfyer/pickup-extractor/api"
	"github.com/fyerfyer/pickup-extractor/api/handler"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pickup extraction HTTP server",
	Long: `Start the HTTP server.

Routes:
  GET  /                     liveness message
  POST /process              extract pickups from a document
  POST /process/report       render a pickup sheet (markdown, html or pdf)
  GET  /api/health           health check
  GET  /api/extractions      extraction audit log (when database.enable is set)

All routes are mounted again under server.base_path when it is configured.

Examples:
  pickupd serve                     # listen on the configured port (default 3000)
  PORT=8080 pickupd serve           # port injected by the hosting platform
  pickupd serve --config config.yaml --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		return runServer(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
}

// runServer 启动HTTP服务器，ctx取消后优雅关闭
func runServer(ctx context.Context) error {
	logger.Info("Starting Pickup Extractor...")

	a, err := setupApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	bodyLimit, err := cfg.Server.BodyLimitBytes()
	if err != nil {
		return err
	}

	router := api.SetupRouter(
		handler.NewPickupHandler(a.service, a.renderer),
		handler.NewExtractionHandler(a.service),
		api.RouterOptions{
			BodyLimit:  bodyLimit,
			BasePath:   cfg.Server.BasePath,
			EnableCORS: cfg.Server.CORS,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待终止信号或启动失败
	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Failed to start server")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return err
	}

	logger.Info("Server exited")
	return nil
}
