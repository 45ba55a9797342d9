package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/modem"
	"github.com/melaina/hive-monitor/internal/logger"
)

type dispatcher struct {
	channel modem.Channel
	out     io.Writer
}

// sendAll sends the batch in order. A failed message does not stop the
// following ones; all failures are returned joined.
func (d *dispatcher) sendAll(ctx context.Context, batch []hive.AlertMessage) error {
	var errs []error

	for i, msg := range batch {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%w: message %d: %w", ErrSendFailed, i+1, ctx.Err()))
			break
		}

		if err := d.send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%w: message %d: %w", ErrSendFailed, i+1, err))
		}
	}

	return errors.Join(errs...)
}

func (d *dispatcher) send(ctx context.Context, msg hive.AlertMessage) error {
	_, _ = fmt.Fprintf(d.out, "Preparing SMS to %s...\n", msg.Destination)
	_, _ = fmt.Fprintf(d.out, "Message: '%s'\n", msg.Body)

	if err := d.channel.Send(ctx, msg); err != nil {
		_, _ = fmt.Fprintf(d.out, "ERROR while sending: %v\n\n", err)
		logger.ErrorKV(ctx, "SMS not sent", "destination", msg.Destination, "error", err)

		return err
	}

	_, _ = fmt.Fprintln(d.out, "SMS sent successfully!")
	_, _ = fmt.Fprintln(d.out)
	logger.InfoKV(ctx, "SMS sent", "destination", msg.Destination)

	return nil
}
