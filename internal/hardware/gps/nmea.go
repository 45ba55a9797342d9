package gps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/logger"
)

const (
	readChunkSize = 256
	// maxSentenceLength caps a buffered line; NMEA sentences are at most 82 bytes.
	maxSentenceLength = 1024
)

// NMEAOptions configures NMEASource.
type NMEAOptions struct {
	// FixTimeout bounds how long Read waits for a sentence carrying a valid fix.
	FixTimeout time.Duration
	// Fallback is returned while the receiver has never reported a fix.
	Fallback hive.Position
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// inputResetter is implemented by serial.Port.
type inputResetter interface {
	ResetInputBuffer() error
}

// NMEASource reads positions from a receiver streaming NMEA 0183 sentences.
// The port is expected to return (0, nil) when its read timeout elapses.
// When the port can reset its input buffer, every Read starts from fresh sentences.
type NMEASource struct {
	port    io.ReadCloser
	opts    NMEAOptions
	pending []byte
	last    *hive.Position
}

// NewNMEASource wraps an open receiver channel.
func NewNMEASource(port io.ReadCloser, opts NMEAOptions) *NMEASource {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &NMEASource{
		port: port,
		opts: opts,
	}
}

// Read consumes sentences until an RMC or GGA sentence reports a valid fix.
// Without one before FixTimeout it returns the last known fix, or Fallback.
func (s *NMEASource) Read(ctx context.Context) (hive.Position, error) {
	deadline := s.opts.Now().Add(s.opts.FixTimeout)

	// Drop what the receiver streamed since the previous read.
	if r, ok := s.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			logger.DebugKV(ctx, "Receiver input buffer not reset", "error", err)
		}

		s.pending = s.pending[:0]
	}

	for {
		if err := ctx.Err(); err != nil {
			return hive.Position{}, err
		}

		line, err := s.nextLine()
		if err != nil {
			return hive.Position{}, fmt.Errorf("read receiver: %w", err)
		}

		if line != "" {
			if pos, ok := s.parse(ctx, line); ok {
				s.last = &pos
				return pos, nil
			}
		}

		if !s.opts.Now().Before(deadline) {
			break
		}
	}

	pos := s.opts.Fallback
	if s.last != nil {
		pos = *s.last
	}

	pos.Timestamp = s.opts.Now()
	logger.DebugKV(ctx, "No GPS fix before timeout, reusing position", "position", pos.String())

	return pos, nil
}

// Close releases the serial channel.
func (s *NMEASource) Close() error {
	return s.port.Close()
}

// nextLine returns one complete line, or "" when the read timed out without one.
func (s *NMEASource) nextLine() (string, error) {
	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(s.pending[:i])
			s.pending = s.pending[i+1:]

			return strings.TrimSpace(line), nil
		}

		chunk := make([]byte, readChunkSize)

		n, err := s.port.Read(chunk)
		s.pending = append(s.pending, chunk[:n]...)

		if len(s.pending) > maxSentenceLength {
			s.pending = s.pending[:0]
		}

		switch {
		case errors.Is(err, io.EOF) && bytes.IndexByte(s.pending, '\n') < 0:
			if len(s.pending) == 0 {
				return "", io.EOF
			}

			line := string(s.pending)
			s.pending = s.pending[:0]

			return strings.TrimSpace(line), nil
		case err != nil && !errors.Is(err, io.EOF):
			return "", err
		case n == 0 && err == nil:
			return "", nil
		}
	}
}

// parse extracts a position from a sentence with a valid fix.
func (s *NMEASource) parse(ctx context.Context, line string) (hive.Position, bool) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		logger.DebugKV(ctx, "Ignoring malformed NMEA sentence", "sentence", line, "error", err)
		return hive.Position{}, false
	}

	var lat, lon float64

	switch m := sentence.(type) {
	case nmea.RMC:
		if m.Validity != nmea.ValidRMC {
			return hive.Position{}, false
		}

		lat, lon = m.Latitude, m.Longitude
	case nmea.GGA:
		if m.FixQuality == nmea.Invalid {
			return hive.Position{}, false
		}

		lat, lon = m.Latitude, m.Longitude
	default:
		return hive.Position{}, false
	}

	return hive.Position{
		Latitude:  hive.RoundCoordinate(lat),
		Longitude: hive.RoundCoordinate(lon),
		Timestamp: s.opts.Now(),
	}, true
}
