package telemetry

import (
	"fmt"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
)

// Topic kinds under hives/<station>/.
const (
	KindPosition = "position"
	KindWeather  = "weather"
	KindAlerts   = "alerts"
)

// Topic returns the topic of kind for station.
func Topic(station, kind string) string {
	return fmt.Sprintf("hives/%s/%s", station, kind)
}

// PositionPayload is the JSON body of a position message.
type PositionPayload struct {
	StationID string    `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
}

// WeatherPayload is the JSON body of a weather message.
type WeatherPayload struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature_c"`
	Humidity    float64   `json:"humidity_pct"`
	Pressure    float64   `json:"pressure_hpa"`
	Sequence    int       `json:"sequence,omitempty"`
}

// AlertPayload is the JSON body of an alert message.
type AlertPayload struct {
	StationID string         `json:"station_id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      hive.AlertKind `json:"kind"`
	Message   string         `json:"message"`
	Advice    string         `json:"advice,omitempty"`
}

func newPositionPayload(station string, p hive.Position) PositionPayload {
	return PositionPayload{
		StationID: station,
		Timestamp: p.Timestamp,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

func newWeatherPayload(station string, r hive.WeatherReading, sequence int) WeatherPayload {
	return WeatherPayload{
		StationID:   station,
		Timestamp:   r.Timestamp,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Pressure:    r.Pressure,
		Sequence:    sequence,
	}
}

func newAlertPayload(station string, a hive.Alert) AlertPayload {
	return AlertPayload{
		StationID: station,
		Timestamp: a.Timestamp,
		Kind:      a.Kind,
		Message:   a.Message,
		Advice:    a.Advice,
	}
}
