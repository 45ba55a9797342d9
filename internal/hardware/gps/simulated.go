package gps

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
)

// SimulatorOptions configures SimulatedSource.
type SimulatorOptions struct {
	BaseLatitude  float64
	BaseLongitude float64
	// LatitudeJitter bounds the uniform latitude noise, in degrees.
	LatitudeJitter float64
	// LongitudeJitter bounds the uniform longitude noise, in degrees.
	LongitudeJitter float64
	// Rand overrides the random generator; nil seeds a new one.
	Rand *rand.Rand
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// SimulatedSource generates positions around a base coordinate.
type SimulatedSource struct {
	opts SimulatorOptions
}

// NewSimulatedSource creates a simulator.
func NewSimulatedSource(opts SimulatorOptions) *SimulatedSource {
	if opts.Rand == nil {
		opts.Rand = newRand()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SimulatedSource{
		opts: opts,
	}
}

// Read returns base ± jitter on each axis, rounded to 5 decimal places.
func (s *SimulatedSource) Read(ctx context.Context) (hive.Position, error) {
	if err := ctx.Err(); err != nil {
		return hive.Position{}, err
	}

	return hive.Position{
		Latitude:  hive.RoundCoordinate(s.opts.BaseLatitude + s.uniform(s.opts.LatitudeJitter)),
		Longitude: hive.RoundCoordinate(s.opts.BaseLongitude + s.uniform(s.opts.LongitudeJitter)),
		Timestamp: s.opts.Now(),
	}, nil
}

// Close is a no-op.
func (s *SimulatedSource) Close() error {
	return nil
}

// uniform draws from [-bound, bound).
func (s *SimulatedSource) uniform(bound float64) float64 {
	return (s.opts.Rand.Float64()*2 - 1) * bound
}
