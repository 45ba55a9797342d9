package position

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/gps"
	"github.com/melaina/hive-monitor/internal/logger"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
	"github.com/melaina/hive-monitor/internal/service/common"
	"github.com/melaina/hive-monitor/internal/telemetry"
	"github.com/melaina/hive-monitor/internal/version"
)

// Options controls the position monitor and its command line overrides.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Mode overrides gps.mode (auto, hardware, simulated) when set.
	Mode string
	// Port overrides the receiver serial port when set.
	Port string
	// LogFile overrides the position log path when set.
	LogFile string
	// Interval overrides the polling period when positive.
	Interval time.Duration
	// Out receives the human-readable report; nil means stdout.
	Out io.Writer
}

const separatorWidth = 40

// Run reads positions until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "hive-position")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line flags override the configuration.
	if err = applyOverrides(&cfg.GPS, opts); err != nil {
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

	logger.InfoKV(ctx, "Starting position monitor", "version", version.Short(), "station", station, "mode", cfg.GPS.Mode)

	// Pick the receiver or the simulator for the whole run.
	source, err := gps.Open(ctx, cfg.GPS)
	if err != nil {
		return err
	}

	// Ensure the receiver is released on function exit.
	defer func() {
		_ = source.Close()
	}()

	// Connect telemetry in the background; Noop when no broker is set.
	sink := telemetry.Open(ctx, cfg.MQTT, station)
	defer sink.Close()

	// Report to stdout unless the caller redirects it.
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	m := &monitor{
		source: source,
		log:    logfile.NewPositionLog(cfg.GPS.LogFile),
		sink:   sink,
		fence: hive.Geofence{
			OriginLatitude: cfg.GPS.OriginLatitude,
			Threshold:      cfg.GPS.GeofenceThreshold,
		},
		out: out,
	}

	_, _ = fmt.Fprintln(out, "Starting hive position monitoring...")

	// Main polling loop until context cancellation.
	return m.run(ctx, cfg.GPS.Interval)
}

// applyOverrides merges command line values into the GPS section.
func applyOverrides(cfg *config.GPSConfig, opts *Options) error {
	if opts.Mode != "" {
		mode, err := config.ParseMode(opts.Mode)
		if err != nil {
			return err
		}

		cfg.Mode = mode
	}

	if opts.Port != "" {
		cfg.Serial.Port = opts.Port
	}

	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}

	if opts.Interval > 0 {
		cfg.Interval = opts.Interval
	}

	return nil
}
