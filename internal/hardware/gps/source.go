package gps

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/serialport"
	"github.com/melaina/hive-monitor/internal/logger"
)

// PositionSource yields one position per call.
type PositionSource interface {
	Read(ctx context.Context) (hive.Position, error)
	Close() error
}

// Open selects the position source for the process lifetime.
// In auto mode a failed receiver probe switches permanently to simulation.
//
//nolint:ireturn // The factory exists to hide which variant was picked.
func Open(ctx context.Context, cfg config.GPSConfig) (PositionSource, error) {
	simulated := func() PositionSource {
		return NewSimulatedSource(SimulatorOptions{
			BaseLatitude:    cfg.OriginLatitude,
			BaseLongitude:   cfg.OriginLongitude,
			LatitudeJitter:  cfg.LatitudeJitter,
			LongitudeJitter: cfg.LongitudeJitter,
		})
	}

	if cfg.Mode == config.ModeSimulated {
		logger.Info(ctx, "GPS simulation requested, receiver not probed")
		return simulated(), nil
	}

	port, err := serialport.Open(serialport.Options{
		Path:        cfg.Serial.Port,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
	if err != nil {
		if cfg.Mode == config.ModeHardware {
			return nil, fmt.Errorf("open GPS receiver: %w", err)
		}

		logger.WarnKV(ctx, "GPS receiver not detected, switching to simulation", "port", cfg.Serial.Port, "error", err)

		return simulated(), nil
	}

	logger.InfoKV(ctx, "GPS receiver detected", "port", cfg.Serial.Port, "baud_rate", cfg.Serial.BaudRate)

	return NewNMEASource(port, NMEAOptions{
		FixTimeout: cfg.FixTimeout,
		Fallback: hive.Position{
			Latitude:  cfg.OriginLatitude,
			Longitude: cfg.OriginLongitude,
		},
	}), nil
}

// newRand returns a randomly seeded generator.
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Simulated coordinates are not security sensitive.
}
