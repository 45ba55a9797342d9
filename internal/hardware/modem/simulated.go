package modem

import (
	"context"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/logger"
)

// Simulated stands in for the modem on machines without one.
type Simulated struct {
	delay time.Duration
}

// NewSimulated creates a channel that waits delay and reports success.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{
		delay: delay,
	}
}

// Send waits the simulated network delay and always succeeds.
// A canceled context only shortens the wait.
func (s *Simulated) Send(ctx context.Context, msg hive.AlertMessage) error {
	_ = wait(ctx, s.delay) //nolint:errcheck // Simulated sends never fail.

	logger.DebugKV(ctx, "Simulated SMS delivered", "destination", msg.Destination, "length", len(msg.Body))

	return nil
}

// Close is a no-op.
func (s *Simulated) Close() error {
	return nil
}
