// Package serialport opens the UART channels used by the GPS receiver and the
// cellular modem.
package serialport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Options describes the channel to open.
type Options struct {
	// Path is the device path, e.g. /dev/serial0.
	Path string
	// BaudRate is the line speed.
	BaudRate int
	// ReadTimeout bounds each Read; a timed-out Read returns 0 bytes and no error.
	ReadTimeout time.Duration
}

// errPathRequired is returned when no device path is configured.
var errPathRequired = errors.New("serial device path must be provided")

// Open opens the port in 8N1 mode and applies the read timeout.
//
//nolint:ireturn // serial.Port is the library's port abstraction.
func Open(opts Options) (serial.Port, error) {
	if opts.Path == "" {
		return nil, errPathRequired
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(opts.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w", opts.Path, opts.BaudRate, err)
	}

	if opts.ReadTimeout > 0 {
		if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
			_ = port.Close()

			return nil, fmt.Errorf("set read timeout on %s: %w", opts.Path, err)
		}
	}

	return port, nil
}
