package hive

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// AlertKind classifies an advisory alert.
type AlertKind string

const (
	// AlertGeofenceBreach fires when the hive leaves its zone.
	AlertGeofenceBreach AlertKind = "geofence_breach"
	// AlertHeat fires when the outside temperature is too high for the colony.
	AlertHeat AlertKind = "heat"
	// AlertDryness fires when the air is too dry.
	AlertDryness AlertKind = "dryness"
	// AlertMoldRisk fires when humidity favours mold in the hive.
	AlertMoldRisk AlertKind = "mold_risk"
)

// displacementScale drops float subtraction noise below 1e-9 degrees,
// far under the 5-decimal resolution of the coordinates.
const displacementScale = 1e9

// ErrDestinationRequired is returned when an SMS has no recipient.
var ErrDestinationRequired = errors.New("destination must be provided")

// Alert is an advisory condition detected on a reading.
type Alert struct {
	// Kind is the condition that raised the alert.
	Kind AlertKind
	// Message states the condition.
	Message string
	// Advice tells the beekeeper what it means for the colony.
	Advice string
	// Timestamp is the capture time of the reading that raised it.
	Timestamp time.Time
}

// String renders the alert for console output.
func (a Alert) String() string {
	if a.Advice == "" {
		return a.Message
	}

	return a.Message + " -> " + a.Advice
}

// Geofence is a latitude band around the hive origin.
type Geofence struct {
	OriginLatitude float64
	// Threshold is the allowed absolute latitude displacement in degrees.
	Threshold float64
}

// Breached reports whether |lat - origin| is strictly above the threshold.
func (g Geofence) Breached(p Position) bool {
	displacement := math.Abs(p.Latitude - g.OriginLatitude)
	displacement = math.Round(displacement*displacementScale) / displacementScale

	return displacement > g.Threshold
}

// Evaluate returns the breach alert for p, if any.
func (g Geofence) Evaluate(p Position) (Alert, bool) {
	if !g.Breached(p) {
		return Alert{}, false
	}

	return Alert{
		Kind:      AlertGeofenceBreach,
		Message:   "ALERT: the hive has left its zone",
		Advice:    "possible theft",
		Timestamp: p.Timestamp,
	}, true
}

// WeatherThresholds are the strict limits checked on every weather reading.
type WeatherThresholds struct {
	// MaxTemperature in °C; above it the heat alert fires.
	MaxTemperature float64
	// MinHumidity in %; below it the dryness alert fires.
	MinHumidity float64
	// MaxHumidity in %; above it the mold-risk alert fires.
	MaxHumidity float64
}

// Evaluate checks the three thresholds independently.
func (t WeatherThresholds) Evaluate(r WeatherReading) []Alert {
	var alerts []Alert

	if r.Temperature > t.MaxTemperature {
		alerts = append(alerts, Alert{
			Kind:      AlertHeat,
			Message:   fmt.Sprintf("WARNING: high outside temperature (> %g°C)", t.MaxTemperature),
			Advice:    "risk for the bees",
			Timestamp: r.Timestamp,
		})
	}

	if r.Humidity < t.MinHumidity {
		alerts = append(alerts, Alert{
			Kind:      AlertDryness,
			Message:   fmt.Sprintf("WARNING: very low humidity (< %g%%)", t.MinHumidity),
			Advice:    "dry conditions, keep an eye on the bees",
			Timestamp: r.Timestamp,
		})
	}

	if r.Humidity > t.MaxHumidity {
		alerts = append(alerts, Alert{
			Kind:      AlertMoldRisk,
			Message:   fmt.Sprintf("WARNING: very high humidity (> %g%%)", t.MaxHumidity),
			Advice:    "risk of mold in the hive",
			Timestamp: r.Timestamp,
		})
	}

	return alerts
}

// AlertMessage is an SMS addressed to a phone number.
type AlertMessage struct {
	// Destination is a phone-number-shaped string, e.g. "+596 696 12 34 56".
	Destination string
	// Body is free text; it may be empty.
	Body string
}

// NewAlertMessage validates and builds an SMS.
func NewAlertMessage(destination, body string) (AlertMessage, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return AlertMessage{}, ErrDestinationRequired
	}

	return AlertMessage{
		Destination: destination,
		Body:        body,
	}, nil
}
