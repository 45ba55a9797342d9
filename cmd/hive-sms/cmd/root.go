package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/service/dispatcher"
	"github.com/melaina/hive-monitor/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// mode overrides the modem selection.
	mode string
	// port overrides the modem serial port.
	port string

	// rootCmd represents the base command for sending SMS alerts.
	rootCmd = &cobra.Command{
		Use:   "hive-sms [destination] [message]",
		Short: "Send an SMS alert to the beekeeper.",
		Long: `Sends an SMS through the GSM modem using AT commands.

With a destination and a message, sends that message. With only a destination,
or with no arguments, sends the two sample alerts (heat and theft) to the
destination or to the configured beekeeper number.

Without a modem on the serial port, sends are simulated (mode "auto").
Exits with status 1 when any message could not be sent.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts := &dispatcher.Options{
				ConfigPath: configPath,
				Mode:       mode,
				Port:       port,
			}

			if len(args) > 0 {
				opts.Destination = args[0]
			}

			if len(args) > 1 {
				opts.Messages = []string{args[1]}
			}

			// Delivery failures are already reported per message.
			cmd.SilenceUsage = true

			return dispatcher.Run(ctx, opts)
		},
	}
)

// Execute runs the hive-sms CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "modem mode: auto, hardware or simulated")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "modem serial port")
}
