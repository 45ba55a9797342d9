package hive

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// PositionLogLayout is the timestamp layout of position log lines.
const PositionLogLayout = "2006-01-02 15:04:05"

// coordinateScale rounds coordinates to 5 decimal places (about 1 m).
const coordinateScale = 1e5

// Position is one coordinate pair captured by the receiver or the simulator.
type Position struct {
	// Latitude in decimal degrees.
	Latitude float64
	// Longitude in decimal degrees.
	Longitude float64
	// Timestamp is the capture time.
	Timestamp time.Time
}

// RoundCoordinate rounds a coordinate to 5 decimal places.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*coordinateScale) / coordinateScale
}

// LogLine renders the position as "YYYY-MM-DD HH:MM:SS, <lat>, <lon>".
func (p Position) LogLine() string {
	return fmt.Sprintf("%s, %s, %s",
		p.Timestamp.Format(PositionLogLayout),
		formatCoordinate(p.Latitude),
		formatCoordinate(p.Longitude),
	)
}

// String renders the coordinates for console output.
func (p Position) String() string {
	return fmt.Sprintf("lat %s | lon %s", formatCoordinate(p.Latitude), formatCoordinate(p.Longitude))
}

// formatCoordinate prints the shortest representation, so 14.61 stays "14.61".
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
