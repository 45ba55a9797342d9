package logfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/melaina/hive-monitor/internal/domain/hive"
)

// WeatherRepository stores weather readings.
type WeatherRepository interface {
	EnsureHeader(ctx context.Context) error
	Append(ctx context.Context, r hive.WeatherReading) error
}

// WeatherLog appends readings as CSV rows under a single header line.
type WeatherLog struct {
	path string
	mu   sync.Mutex
}

// NewWeatherLog creates a log writing to path; the file is created on first write.
func NewWeatherLog(path string) *WeatherLog {
	return &WeatherLog{
		path: filepath.Clean(path),
	}
}

// Path returns the file location.
func (l *WeatherLog) Path() string {
	return l.path
}

// EnsureHeader creates the file and writes the header if the file is empty.
func (l *WeatherLog) EnsureHeader(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.write(nil)
}

// Append writes one row for r, preceded by the header when the file is empty.
func (l *WeatherLog) Append(_ context.Context, r hive.WeatherReading) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.write(r.CSVRecord())
}

// write appends record (if any) after adding the header to an empty file.
func (l *WeatherLog) write(record []string) error {
	f, err := openAppend(l.path)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("stat %s: %w", l.path, err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		_ = w.Write(hive.WeatherCSVHeader) //nolint:errcheck // Flush reports buffered write errors.
	}

	if record != nil {
		_ = w.Write(record) //nolint:errcheck // Flush reports buffered write errors.
	}

	w.Flush()

	if err = w.Error(); err != nil {
		_ = f.Close()

		return fmt.Errorf("write weather log: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close weather log: %w", err)
	}

	return nil
}
