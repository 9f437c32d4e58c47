package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"data_logger/internal/output"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log readings from a serial port in the terminal",
		Long: `Open the given port and print every reading as it arrives.
Press Ctrl-C to stop; the session's readings are then saved as CSV.

Examples:
  datalogger log --port COM3
  datalogger log -p /dev/ttyUSB0 --out run1.csv --output json`,
		Args: cobra.NoArgs,
		RunE: runLog,
	}
	cmd.Flags().StringP("port", "p", "", "serial port to open (see 'datalogger ports')")
	cmd.Flags().String("output", "text", "display format: text, json")
	_ = cmd.MarkFlagRequired("port")
	addSerialFlags(cmd)
	return cmd
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	port, _ := cmd.Flags().GetString("port")
	format, _ := cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var renderer output.Renderer
	switch strings.ToLower(format) {
	case "json":
		renderer = output.NewJSONRenderer(cmd.OutOrStdout())
	default:
		renderer = output.NewTextRenderer(cmd.OutOrStdout())
	}

	items, unsubscribe := a.display.Subscribe()
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		output.Pump(items, renderer, func(err error) { log.Warnw("render_failed", "err", err) })
	}()
	// flush the display before returning
	defer func() {
		unsubscribe()
		<-rendered
	}()

	// the loop outlives ctx so the session can be stopped and saved after Ctrl-C
	loopCtx, cancelLoop := context.WithCancel(context.WithoutCancel(ctx))
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		a.svc.Run(loopCtx, cfg.Poll.Interval())
	}()
	defer func() {
		cancelLoop()
		<-loopDone
	}()

	if _, err := a.svc.Start(ctx, port); err != nil {
		return fmt.Errorf("start logging on %s: %w", port, err)
	}

	<-ctx.Done()

	if _, err := a.svc.Stop(loopCtx); err != nil {
		log.Warnw("session_stop_failed", "err", err)
	}
	n, err := a.svc.ExportFile(loopCtx, cfg.Export.Path)
	if err != nil {
		return fmt.Errorf("save readings: %w", err)
	}
	log.Infow("session_saved", "path", cfg.Export.Path, "rows", n)
	return nil
}
