package gps

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/melaina/hive-monitor/internal/domain/hive"
)

const (
	validRMC   = "$GPRMC,220516,A,1436.420,N,06103.900,W,0.0,0.0,140326,004.2,W*7B"
	voidRMC    = "$GPRMC,220516,V,1436.420,N,06103.900,W,0.0,0.0,140326,004.2,W*6C"
	validGGA   = "$GPGGA,220517,1436.300,N,06103.840,W,1,08,0.9,12.4,M,46.9,M,,*65"
	noFixGGA   = "$GPGGA,220517,1436.300,N,06103.840,W,0,00,99.9,0.0,M,0.0,M,,*50"
	gsa        = "$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39"
	corruptRMC = "$GPRMC,220516,A,1436.420,N,06103.900,W,0.0,0.0,140326,004.2,W*00"
)

var errUnplugged = errors.New("device unplugged")

// scriptedPort replays chunks, then behaves like a serial port whose read timeout elapsed.
type scriptedPort struct {
	chunks []string
	err    error
	closed bool
}

// Read returns the next chunk, the scripted error, or (0, nil) once drained.
func (p *scriptedPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.err != nil {
			return 0, p.err
		}

		return 0, nil
	}

	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]

	return n, nil
}

// Close records the call.
func (p *scriptedPort) Close() error {
	p.closed = true

	return nil
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 3, 14, 22, 5, 16, 0, time.UTC)

	return func() time.Time {
		now = now.Add(step)

		return now
	}
}

func newTestSource(port io.ReadCloser) *NMEASource {
	return NewNMEASource(port, NMEAOptions{
		FixTimeout: 2 * time.Second,
		Fallback:   hive.Position{Latitude: 14.605, Longitude: -61.065},
		Now:        steppingClock(100 * time.Millisecond),
	})
}

// TestNMEASource_SkipsUntilValidFix ignores unrelated, corrupt and fix-less sentences.
func TestNMEASource_SkipsUntilValidFix(t *testing.T) {
	t.Parallel()

	port := &scriptedPort{chunks: []string{
		gsa + "\r\n" + corruptRMC + "\r\n",
		voidRMC + "\r\n" + noFixGGA + "\r\n$GPRMC,2205",
		"16,A,1436.420,N,06103.900,W,0.0,0.0,140326,004.2,W*7B\r\n",
	}}
	src := newTestSource(port)

	pos, err := src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.607, pos.Latitude, 1e-9)
	require.InDelta(t, -61.065, pos.Longitude, 1e-9)

	require.NoError(t, src.Close())
	require.True(t, port.closed)
}

// resettablePort discards its buffered chunks on ResetInputBuffer and then
// receives the next batch of live chunks.
type resettablePort struct {
	scriptedPort
	live   [][]string
	resets int
}

func (p *resettablePort) ResetInputBuffer() error {
	p.resets++
	p.chunks = nil

	if len(p.live) > 0 {
		p.chunks = p.live[0]
		p.live = p.live[1:]
	}

	return nil
}

// TestNMEASource_SkipsStaleSentences reads only what arrives after each Read starts.
func TestNMEASource_SkipsStaleSentences(t *testing.T) {
	t.Parallel()

	port := &resettablePort{
		scriptedPort: scriptedPort{chunks: []string{validRMC + "\r\n"}},
		live:         [][]string{{validGGA + "\r\n"}, {"$GPGGA,2205", "17,1436.300,N,06103.840,W,1,08,0.9,12.4,M,46.9,M,,*65\r\n"}},
	}
	src := newTestSource(port)

	pos, err := src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.605, pos.Latitude, 1e-9)
	require.InDelta(t, -61.064, pos.Longitude, 1e-9)

	pos, err = src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.605, pos.Latitude, 1e-9)
	require.Equal(t, 2, port.resets)
}

// TestNMEASource_GGA accepts a GGA sentence with a GPS fix.
func TestNMEASource_GGA(t *testing.T) {
	t.Parallel()

	src := newTestSource(&scriptedPort{chunks: []string{validGGA + "\r\n"}})

	pos, err := src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.605, pos.Latitude, 1e-9)
	require.InDelta(t, -61.064, pos.Longitude, 1e-9)
}

// TestNMEASource_TimeoutFallsBack returns the base coordinate, then the last known fix.
func TestNMEASource_TimeoutFallsBack(t *testing.T) {
	t.Parallel()

	port := &scriptedPort{chunks: []string{voidRMC + "\r\n"}}
	src := newTestSource(port)

	pos, err := src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.605, pos.Latitude, 1e-9)
	require.InDelta(t, -61.065, pos.Longitude, 1e-9)
	require.False(t, pos.Timestamp.IsZero())

	port.chunks = []string{validRMC + "\r\n"}

	_, err = src.Read(context.Background())
	require.NoError(t, err)

	pos, err = src.Read(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 14.607, pos.Latitude, 1e-9)
}

// TestNMEASource_ReadError surfaces channel failures.
func TestNMEASource_ReadError(t *testing.T) {
	t.Parallel()

	src := newTestSource(&scriptedPort{err: errUnplugged})

	_, err := src.Read(context.Background())
	require.ErrorIs(t, err, errUnplugged)
}

// TestNMEASource_Canceled stops before touching the channel.
func TestNMEASource_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(&scriptedPort{}).Read(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
