package logfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/domain/hive"
)

// PositionRepository stores positions.
type PositionRepository interface {
	Append(ctx context.Context, p hive.Position) error
}

// PositionLog appends "YYYY-MM-DD HH:MM:SS, <lat>, <lon>" lines.
type PositionLog struct {
	path string
	mu   sync.Mutex
}

// NewPositionLog creates a log writing to path; the file is created on first append.
func NewPositionLog(path string) *PositionLog {
	return &PositionLog{
		path: filepath.Clean(path),
	}
}

// Path returns the file location.
func (l *PositionLog) Path() string {
	return l.path
}

// Append writes one line for p.
func (l *PositionLog) Append(_ context.Context, p hive.Position) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := openAppend(l.path)
	if err != nil {
		return err
	}

	if _, err = fmt.Fprintln(f, p.LogLine()); err != nil {
		_ = f.Close()

		return fmt.Errorf("write position log: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close position log: %w", err)
	}

	return nil
}

// openAppend opens path for appending, creating it if absent.
func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.DefaultLogPermissions)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}
