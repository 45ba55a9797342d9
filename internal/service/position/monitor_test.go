package position

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/gps"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
)

var errNoFix = errors.New("receiver unplugged")

// scriptedSource returns the scripted latitudes in order, then errors.
type scriptedSource struct {
	latitudes []float64
}

// Read pops the next latitude.
func (s *scriptedSource) Read(context.Context) (hive.Position, error) {
	if len(s.latitudes) == 0 {
		return hive.Position{}, errNoFix
	}

	lat := s.latitudes[0]
	s.latitudes = s.latitudes[1:]

	return hive.Position{Latitude: lat, Longitude: -61.065, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (s *scriptedSource) Close() error { return nil }

// recordingSink keeps what was published.
type recordingSink struct {
	mu        sync.Mutex
	positions []hive.Position
	alerts    []hive.Alert
}

func (s *recordingSink) PublishPosition(_ context.Context, p hive.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions = append(s.positions, p)

	return nil
}

func (s *recordingSink) PublishWeather(context.Context, hive.WeatherReading, int) error { return nil }

func (s *recordingSink) PublishAlert(_ context.Context, a hive.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, a)

	return nil
}

func (s *recordingSink) Close() {}

func newTestMonitor(t *testing.T, source gps.PositionSource) (*monitor, *recordingSink, *bytes.Buffer, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capteur_gps.log")
	sink := new(recordingSink)
	out := new(bytes.Buffer)

	return &monitor{
		source: source,
		log:    logfile.NewPositionLog(path),
		sink:   sink,
		fence:  hive.Geofence{OriginLatitude: 14.605, Threshold: 0.008},
		out:    out,
	}, sink, out, path
}

func countLines(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Count(string(data), "\n")
}

// TestMonitor_Tick logs every reading and alerts only outside the geofence.
func TestMonitor_Tick(t *testing.T) {
	t.Parallel()

	m, sink, out, path := newTestMonitor(t, &scriptedSource{latitudes: []float64{14.613, 14.614}})

	require.NoError(t, m.tick(context.Background()))
	require.NotContains(t, out.String(), "left its zone")

	require.NoError(t, m.tick(context.Background()))
	require.Contains(t, out.String(), "Current position: lat 14.614 | lon -61.065")
	require.Contains(t, out.String(), "ALERT: the hive has left its zone")

	require.Equal(t, 2, countLines(t, path))
	require.Len(t, sink.positions, 2)
	require.Len(t, sink.alerts, 1)
	require.Equal(t, hive.AlertGeofenceBreach, sink.alerts[0].Kind)

	err := m.tick(context.Background())
	require.ErrorIs(t, err, errNoFix)
	require.Equal(t, 2, countLines(t, path))
}

// TestMonitor_RunPeriod reads immediately and then every interval until canceled.
func TestMonitor_RunPeriod(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		m, sink, _, path := newTestMonitor(t, gps.NewSimulatedSource(gps.SimulatorOptions{
			BaseLatitude:   14.605,
			BaseLongitude:  -61.065,
			LatitudeJitter: 0.010,
		}))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- m.run(ctx, 5*time.Second)
		}()

		time.Sleep(12 * time.Second)
		cancel()

		require.NoError(t, <-done)
		require.Equal(t, 3, countLines(t, path))
		require.Len(t, sink.positions, 3)
	})
}

// TestMonitor_RunSurvivesReadErrors keeps looping after a failed read.
func TestMonitor_RunSurvivesReadErrors(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		m, _, _, path := newTestMonitor(t, &scriptedSource{latitudes: []float64{14.605}})

		ctx, cancel := context.WithTimeout(context.Background(), 11*time.Second)
		defer cancel()

		require.NoError(t, m.run(ctx, 5*time.Second))
		require.Equal(t, 1, countLines(t, path))
	})
}

// TestRun_Simulated runs the whole command in simulation mode.
func TestRun_Simulated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	logPath := filepath.Join(dir, "positions.log")

	cfg := config.Default()
	cfg.GPS.Mode = config.ModeSimulated
	cfg.StationID = "test-hive"
	require.NoError(t, config.Save(cfgPath, cfg))

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 7*time.Second)
		defer cancel()

		out := new(bytes.Buffer)

		err := Run(ctx, &Options{
			ConfigPath: cfgPath,
			LogFile:    logPath,
			Interval:   2 * time.Second,
			Out:        out,
		})
		require.NoError(t, err)
		require.Equal(t, 4, countLines(t, logPath))
		require.Contains(t, out.String(), "Starting hive position monitoring")
	})
}

// TestRun_InvalidMode rejects an unknown --mode value.
func TestRun_InvalidMode(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Mode:       "maybe",
	})
	require.ErrorIs(t, err, config.ErrUnknownMode)
}
