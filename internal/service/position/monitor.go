package position

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/gps"
	"github.com/melaina/hive-monitor/internal/logger"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
	"github.com/melaina/hive-monitor/internal/telemetry"
)

// monitor runs one read-log-alert cycle per tick.
type monitor struct {
	source gps.PositionSource
	log    logfile.PositionRepository
	sink   telemetry.Sink
	fence  hive.Geofence
	out    io.Writer
}

// run reads immediately, then once per interval, until ctx is canceled.
func (m *monitor) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.tick(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorKV(ctx, "Position cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}

// tick reads one position, logs it and evaluates the geofence.
// Only the read error is returned; log and publish failures are reported and skipped.
func (m *monitor) tick(ctx context.Context) error {
	pos, err := m.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}

	_, _ = fmt.Fprintf(m.out, "Current position: %s\n", pos)

	if err = m.log.Append(ctx, pos); err != nil {
		logger.WarnKV(ctx, "Failed to append position log", "error", err)
	}

	if err = m.sink.PublishPosition(ctx, pos); err != nil && !errors.Is(err, context.Canceled) {
		logger.DebugKV(ctx, "Position not published", "error", err)
	}

	if alert, breached := m.fence.Evaluate(pos); breached {
		_, _ = fmt.Fprintf(m.out, "   %s\n", alert)
		logger.WarnKV(ctx, "Geofence breached", "latitude", pos.Latitude, "origin", m.fence.OriginLatitude)

		if err = m.sink.PublishAlert(ctx, alert); err != nil {
			logger.WarnKV(ctx, "Geofence alert not published", "error", err)
		}
	}

	_, _ = fmt.Fprintln(m.out, strings.Repeat("-", separatorWidth))

	return nil
}
