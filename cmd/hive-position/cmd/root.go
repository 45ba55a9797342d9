package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/service/position"
	"github.com/melaina/hive-monitor/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// mode overrides the receiver selection.
	mode string
	// port overrides the receiver serial port.
	port string
	// logFile overrides the position log path.
	logFile string
	// interval overrides the polling period.
	interval time.Duration

	// rootCmd represents the base command for hive position monitoring.
	rootCmd = &cobra.Command{
		Use:   "hive-position",
		Short: "Track the hive position and detect theft.",
		Long: `Reads the hive position from the GPS receiver every period, appends it to the
position log and prints a geofence alert when the hive moves away from its origin.

Without a receiver on the serial port, positions are simulated around the origin
(mode "auto"). Runs until interrupted with Ctrl+C or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return position.Run(ctx, &position.Options{
				ConfigPath: configPath,
				Mode:       mode,
				Port:       port,
				LogFile:    logFile,
				Interval:   interval,
			})
		},
	}
)

// Execute runs the hive-position CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "receiver mode: auto, hardware or simulated")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "GPS serial port")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "position log file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "polling period")
}
