package weather

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
	"github.com/melaina/hive-monitor/internal/hardware/bme280"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
)

var errBus = errors.New("i2c bus timeout")

// scriptedSensor replays samples; a zero Sample stands for a read failure.
type scriptedSensor struct {
	samples []bme280.Sample
}

func (s *scriptedSensor) Sense() (bme280.Sample, error) {
	if len(s.samples) == 0 {
		return bme280.Sample{}, errBus
	}

	sample := s.samples[0]
	s.samples = s.samples[1:]

	if sample == (bme280.Sample{}) {
		return sample, errBus
	}

	return sample, nil
}

func (s *scriptedSensor) Close() error { return nil }

type recordingSink struct {
	mu       sync.Mutex
	readings []int
	alerts   []hive.AlertKind
}

func (s *recordingSink) PublishPosition(context.Context, hive.Position) error { return nil }

func (s *recordingSink) PublishWeather(_ context.Context, _ hive.WeatherReading, sequence int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, sequence)

	return nil
}

func (s *recordingSink) PublishAlert(_ context.Context, a hive.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, a.Kind)

	return nil
}

func (s *recordingSink) Close() {}

func newTestLoop(t *testing.T, sensor bme280.Sensor) (*loop, *recordingSink, *bytes.Buffer, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "donnees_meteo.log")
	repo := logfile.NewWeatherLog(path)
	require.NoError(t, repo.EnsureHeader(context.Background()))

	sink := new(recordingSink)
	out := new(bytes.Buffer)

	return &loop{
		sensor: sensor,
		log:    repo,
		sink:   sink,
		limits: hive.WeatherThresholds{MaxTemperature: 35, MinHumidity: 30, MaxHumidity: 85},
		out:    out,
		now: func() time.Time {
			return time.Date(2026, 3, 14, 10, 30, 0, 123456000, time.UTC)
		},
	}, sink, out, path
}

func readLog(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// TestLoop_TickWritesReading converts pressure to hPa and appends one CSV row.
func TestLoop_TickWritesReading(t *testing.T) {
	t.Parallel()

	l, sink, out, path := newTestLoop(t, &scriptedSensor{samples: []bme280.Sample{
		{Temperature: 27.458, Humidity: 61.2, Pressure: 101325},
	}})

	l.tick(context.Background())

	require.Equal(t, []string{
		"timestamp,temperature_celsius,humidite_pourcent,pression_hpa",
		"2026-03-14T10:30:00.123456,27.46,61.20,1013.25",
	}, readLog(t, path))

	require.Contains(t, out.String(), "Date/Time    : 14/03/2026 10:30:00")
	require.Contains(t, out.String(), "Temperature  : 27.5°C")
	require.Contains(t, out.String(), "Pressure     : 1013.25 hPa")
	require.NotContains(t, out.String(), "WARNING")
	require.Equal(t, []int{1}, sink.readings)
	require.Empty(t, sink.alerts)
}

// TestLoop_TickThresholds raises each advisory strictly past its limit.
func TestLoop_TickThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sample bme280.Sample
		want   []hive.AlertKind
	}{
		{name: "limits are not alerts", sample: bme280.Sample{Temperature: 35, Humidity: 30, Pressure: 101000}},
		{name: "upper humidity limit", sample: bme280.Sample{Temperature: 20, Humidity: 85, Pressure: 101000}},
		{
			name:   "heat and dryness",
			sample: bme280.Sample{Temperature: 35.1, Humidity: 29.9, Pressure: 101000},
			want:   []hive.AlertKind{hive.AlertHeat, hive.AlertDryness},
		},
		{
			name:   "mold risk",
			sample: bme280.Sample{Temperature: 25, Humidity: 85.1, Pressure: 101000},
			want:   []hive.AlertKind{hive.AlertMoldRisk},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, sink, out, _ := newTestLoop(t, &scriptedSensor{samples: []bme280.Sample{tt.sample}})

			l.tick(context.Background())

			require.Equal(t, tt.want, sink.alerts)
			require.Equal(t, len(tt.want), strings.Count(out.String(), "WARNING"))
		})
	}
}

// TestLoop_TickReadFailure counts the attempt but writes nothing.
func TestLoop_TickReadFailure(t *testing.T) {
	t.Parallel()

	l, sink, out, path := newTestLoop(t, &scriptedSensor{})

	l.tick(context.Background())

	require.Equal(t, 1, l.count)
	require.Len(t, readLog(t, path), 1)
	require.Empty(t, sink.readings)
	require.Contains(t, out.String(), "Reading failed")
}

// TestLoop_RunContinuesAfterFailures polls on every tick until canceled.
func TestLoop_RunContinuesAfterFailures(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		l, sink, _, path := newTestLoop(t, &scriptedSensor{samples: []bme280.Sample{
			{Temperature: 25, Humidity: 50, Pressure: 101000},
			{},
			{Temperature: 26, Humidity: 51, Pressure: 101100},
		}})

		ctx, cancel := context.WithTimeout(context.Background(), 17*time.Second)
		defer cancel()

		l.run(ctx, 5*time.Second)

		require.Equal(t, 4, l.count)
		require.Equal(t, []int{1, 3}, sink.readings)
		require.Len(t, readLog(t, path), 3)
	})
}

// TestRun_SimulatedSummary prints the banner and the final summary.
func TestRun_SimulatedSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "weather.csv")

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()

		out := new(bytes.Buffer)

		err := Run(ctx, &Options{
			ConfigPath: filepath.Join(dir, "missing.yaml"),
			Mode:       string(config.ModeSimulated),
			LogFile:    logPath,
			Out:        out,
		})
		require.NoError(t, err)

		require.Contains(t, out.String(), "APIARY WEATHER STATION")
		require.Contains(t, out.String(), "Polling interval: 5s")
		require.Contains(t, out.String(), "Total readings: 3")
		require.Contains(t, out.String(), "Data saved in: "+logPath)
		require.Len(t, readLog(t, logPath), 4)
	})
}

// TestRun_SensorMissing stops before any reading when the sensor cannot be opened.
func TestRun_SensorMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	logPath := filepath.Join(dir, "weather.csv")

	cfg := config.Default()
	cfg.Weather.I2CBus = "no-such-i2c-bus"
	require.NoError(t, config.Save(cfgPath, cfg))

	out := new(bytes.Buffer)

	err := Run(context.Background(), &Options{
		ConfigPath: cfgPath,
		Mode:       string(config.ModeHardware),
		LogFile:    logPath,
		Out:        out,
	})
	require.ErrorContains(t, err, "open weather sensor")
	require.Contains(t, out.String(), "Cannot start without the weather sensor.")
	require.NoFileExists(t, logPath)
}

// TestRun_InvalidMode rejects an unknown --mode value.
func TestRun_InvalidMode(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Mode:       "sometimes",
	})
	require.ErrorIs(t, err, config.ErrUnknownMode)
}

func TestCenter(t *testing.T) {
	t.Parallel()

	require.Equal(t, " ab  ", center("ab", 5))
	require.Equal(t, "abcdef", center("abcdef", 4))
	require.Equal(t, 60, len([]rune(center("Smart hive monitoring", bannerWidth))))
}
