package weather

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/bme280"
	"github.com/melaina/hive-monitor/internal/logger"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
	"github.com/melaina/hive-monitor/internal/service/common"
	"github.com/melaina/hive-monitor/internal/telemetry"
	"github.com/melaina/hive-monitor/internal/version"
)

// Options controls the weather logger and its command line overrides.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Mode overrides weather.mode (auto, hardware, simulated) when set.
	Mode string
	// LogFile overrides the CSV log path when set.
	LogFile string
	// Interval overrides the polling period when positive.
	Interval time.Duration
	// Out receives the human-readable report; nil means stdout.
	Out io.Writer
}

// Run polls the sensor until ctx is canceled, then prints a summary.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "hive-weather")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line flags override the configuration.
	if err = applyOverrides(&cfg.Weather, opts); err != nil {
		return err
	}

	// Apply the configured log level.
	if lvl, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(lvl)
	}

	// The serial port or I2C bus belongs to one process at a time.
	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	// Detect the station identifier used in telemetry topics.
	station, err := common.DetectStation(cfg.StationID)
	if err != nil {
		return fmt.Errorf("detect station: %w", err)
	}

	// Report to stdout unless the caller redirects it.
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	printBanner(out)

	logger.InfoKV(ctx, "Starting weather logger", "version", version.Short(), "station", station, "mode", cfg.Weather.Mode)

	// A missing sensor is fatal in hardware mode.
	sensor, err := bme280.Open(ctx, cfg.Weather)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Cannot start without the weather sensor.")
		return fmt.Errorf("open weather sensor: %w", err)
	}

	// Ensure the I2C bus is released on function exit.
	defer func() {
		_ = sensor.Close()
	}()

	// Connect telemetry in the background; Noop when no broker is set.
	sink := telemetry.Open(ctx, cfg.MQTT, station)
	defer sink.Close()

	repo := logfile.NewWeatherLog(cfg.Weather.LogFile)

	_, _ = fmt.Fprintf(out, "Polling interval: %s\n", cfg.Weather.Interval)
	_, _ = fmt.Fprintf(out, "Saving readings to: %s\n", repo.Path())

	// Write the CSV header once, before the first reading.
	if err = repo.EnsureHeader(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to prepare weather log", "path", repo.Path(), "error", err)
	}

	l := &loop{
		sensor: sensor,
		log:    repo,
		sink:   sink,
		limits: hive.WeatherThresholds{
			MaxTemperature: cfg.Weather.MaxTemperature,
			MinHumidity:    cfg.Weather.MinHumidity,
			MaxHumidity:    cfg.Weather.MaxHumidity,
		},
		out: out,
		now: time.Now,
	}

	_, _ = fmt.Fprintln(out, "Starting weather monitoring (Ctrl+C to stop)")

	// Main polling loop until context cancellation.
	l.run(ctx, cfg.Weather.Interval)

	// Print the session summary.
	_, _ = fmt.Fprintln(out, "Stop requested")
	_, _ = fmt.Fprintf(out, "Total readings: %d\n", l.count)
	_, _ = fmt.Fprintf(out, "Data saved in: %s\n", repo.Path())

	return nil
}

// applyOverrides merges command line values into the weather section.
func applyOverrides(cfg *config.WeatherConfig, opts *Options) error {
	if opts.Mode != "" {
		mode, err := config.ParseMode(opts.Mode)
		if err != nil {
			return err
		}

		cfg.Mode = mode
	}

	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}

	if opts.Interval > 0 {
		cfg.Interval = opts.Interval
	}

	return nil
}
