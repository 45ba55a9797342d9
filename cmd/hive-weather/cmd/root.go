package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/service/weather"
	"github.com/melaina/hive-monitor/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// mode overrides the sensor selection.
	mode string
	// logFile overrides the CSV log path.
	logFile string
	// interval overrides the polling period.
	interval time.Duration

	// rootCmd represents the base command for the apiary weather station.
	rootCmd = &cobra.Command{
		Use:   "hive-weather",
		Short: "Log outside temperature, humidity and pressure.",
		Long: `Reads the BME280 sensor every period, prints each reading, appends it to the CSV
weather log and warns when conditions are risky for the colony.

The sensor is required by default (mode "hardware"); use --mode simulated to run
without it. On Ctrl+C a summary with the number of readings is printed.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return weather.Run(ctx, &weather.Options{
				ConfigPath: configPath,
				Mode:       mode,
				LogFile:    logFile,
				Interval:   interval,
			})
		},
	}
)

// Execute runs the hive-weather CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "sensor mode: auto, hardware or simulated")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "weather CSV log file")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "polling period")
}
