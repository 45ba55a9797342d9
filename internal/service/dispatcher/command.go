package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/modem"
	"github.com/melaina/hive-monitor/internal/logger"
	"github.com/melaina/hive-monitor/internal/service/common"
	"github.com/melaina/hive-monitor/internal/version"
)

// Sample alerts sent when no message is given on the command line.
const (
	SampleHeatAlert  = "MELAINA ALERT: critical temperature of 38.5°C detected!"
	SampleTheftAlert = "MELAINA ALERT: suspicious hive movement (GPS)!"
)

// ErrSendFailed wraps every failed delivery.
var ErrSendFailed = errors.New("sms not sent")

// Options controls one hive-sms invocation.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Mode overrides modem.mode (auto, hardware, simulated) when set.
	Mode string
	// Port overrides the modem serial port when set.
	Port string
	// Destination overrides modem.recipient when set.
	Destination string
	// Messages are sent in order; empty means the two sample alerts.
	Messages []string
	// Out receives the human-readable report; nil means stdout.
	Out io.Writer
}

// Run sends every message and returns the joined failures.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "hive-sms")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line flags override the configuration.
	if err = applyOverrides(&cfg.Modem, opts); err != nil {
		return err
	}

	// Apply the configured log level.
	if lvl, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(lvl)
	}

	// Without a message, send the two sample alerts.
	messages := opts.Messages
	if len(messages) == 0 {
		messages = []string{SampleHeatAlert, SampleTheftAlert}
	}

	batch := make([]hive.AlertMessage, 0, len(messages))

	for _, body := range messages {
		msg, msgErr := hive.NewAlertMessage(cfg.Modem.Recipient, body)
		if msgErr != nil {
			return msgErr
		}

		batch = append(batch, msg)
	}

	// The serial port or I2C bus belongs to one process at a time.
	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Starting SMS dispatcher", "version", version.Short(), "mode", cfg.Modem.Mode, "messages", len(batch))

	// Pick the modem or the simulator for the whole run.
	channel, err := modem.Open(ctx, cfg.Modem)
	if err != nil {
		return err
	}

	// Ensure the serial port is released on function exit.
	defer func() {
		_ = channel.Close()
	}()

	// Report to stdout unless the caller redirects it.
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	d := &dispatcher{
		channel: channel,
		out:     out,
	}

	// Send every message, even after a failure.
	return d.sendAll(ctx, batch)
}

// applyOverrides merges command line values into the modem section.
func applyOverrides(cfg *config.ModemConfig, opts *Options) error {
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

	if opts.Destination != "" {
		cfg.Recipient = opts.Destination
	}

	return nil
}
