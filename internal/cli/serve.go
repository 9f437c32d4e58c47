package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"data_logger/internal/config"
	"data_logger/internal/handlers"
	"data_logger/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the logging panel and REST API over HTTP",
		Long: `Start the HTTP server: the logging panel on /, the REST API on
/api/v1, the live display on /ws and the API docs on /swagger/index.html.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("http-port", config.DefaultHTTPPort, "HTTP listen port, bound to 127.0.0.1; use host:port to expose it")
	addSerialFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	apiHandler := handlers.NewHandler(a.svc, log)
	apiHandler.DefaultExportPath = cfg.Export.Path

	// controller loop; closes an open session when ctx ends
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		a.svc.Run(ctx, cfg.Poll.Interval())
	}()

	srv := &server.Server{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(cfg.HTTP.Port, apiHandler.InitRoutes())
	}()
	log.Infow("http_server_started", "port", cfg.HTTP.Port)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			<-loopDone
			return err
		}
	}

	log.Infow("shutting down server...")
	stop()
	<-loopDone

	// allow in-flight requests to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// WebSocket streams end once the display closes
	a.display.Close()
	return srv.Shutdown(shutdownCtx)
}
