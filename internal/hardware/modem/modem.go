package modem

import (
	"context"
	"fmt"
	"time"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/serialport"
	"github.com/melaina/hive-monitor/internal/logger"
)

// Channel sends one SMS per call. A nil error means the send succeeded.
type Channel interface {
	Send(ctx context.Context, msg hive.AlertMessage) error
	Close() error
}

// Open selects the channel for the process lifetime.
// In auto mode a modem that cannot be opened switches permanently to simulation.
//
//nolint:ireturn // The factory exists to hide which variant was picked.
func Open(ctx context.Context, cfg config.ModemConfig) (Channel, error) {
	if cfg.Mode == config.ModeSimulated {
		logger.Info(ctx, "Modem simulation requested, serial port not probed")
		return NewSimulated(cfg.SimulatedDelay), nil
	}

	port, err := serialport.Open(serialport.Options{
		Path:        cfg.Serial.Port,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
	if err != nil {
		if cfg.Mode == config.ModeHardware {
			return nil, fmt.Errorf("open modem: %w", err)
		}

		logger.WarnKV(ctx, "GSM modem not detected, switching to simulation", "port", cfg.Serial.Port, "error", err)

		return NewSimulated(cfg.SimulatedDelay), nil
	}

	logger.InfoKV(ctx, "GSM modem detected, real SMS will be sent", "port", cfg.Serial.Port)

	return NewATModem(port, DefaultPauses()), nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
