package cli

import (
	"context"
	"fmt"
	"os"

	"data_logger/internal/config"
	"data_logger/internal/logger"

	"github.com/spf13/cobra"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
)

// NewRootCmd builds the datalogger command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datalogger",
		Short: "Serial sensor data logger",
		Long: `datalogger reads "<distance>,<command>" lines from a serial port,
shows them as they arrive, keeps them for the session and saves them as CSV.

Run "datalogger ports" to see the attached devices, "datalogger log" for a
terminal session or "datalogger serve" for the browser panel.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP(flagConfig, "c", "", "config file (default: configs/config.yml)")
	root.PersistentFlags().String(flagLogLevel, logger.InfoLevel, "log level: debug, info, warn, error")

	root.AddCommand(newPortsCmd(), newLogCmd(), newServeCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for cmd, letting its flags override
// file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Get(cfg.Log.Level), nil
}

// addSerialFlags registers the flags shared by commands that open a port.
func addSerialFlags(cmd *cobra.Command) {
	cmd.Flags().Int("baud", config.DefaultBaudRate, "baud rate")
	cmd.Flags().Float64("timeout", config.DefaultTimeoutSeconds, "read timeout in seconds")
	cmd.Flags().Float64("interval", config.DefaultIntervalSeconds, "poll interval in seconds")
	cmd.Flags().StringP("out", "o", config.DefaultExportPath, "CSV destination")
}
