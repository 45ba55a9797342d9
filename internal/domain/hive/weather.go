package hive

import (
	"fmt"
	"time"
)

const (
	// WeatherTimestampLayout is ISO-8601 with microseconds, as written in the CSV log.
	WeatherTimestampLayout = "2006-01-02T15:04:05.000000"

	pascalsPerHectopascal = 100.0
)

// WeatherCSVHeader lists the columns of the weather log.
//
//nolint:gochecknoglobals // Immutable column list shared by writer and tests.
var WeatherCSVHeader = []string{"timestamp", "temperature_celsius", "humidite_pourcent", "pression_hpa"}

// WeatherReading is one BME280 measurement.
type WeatherReading struct {
	// Temperature in °C.
	Temperature float64
	// Humidity is the relative humidity in %.
	Humidity float64
	// Pressure in hPa.
	Pressure float64
	// Timestamp is the capture time.
	Timestamp time.Time
}

// NewWeatherReading builds a reading from raw sensor values; pressure is given in Pa.
func NewWeatherReading(temperature, humidity, pressurePa float64, at time.Time) WeatherReading {
	return WeatherReading{
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressurePa / pascalsPerHectopascal,
		Timestamp:   at,
	}
}

// CSVRecord renders the reading as a weather log row, values rounded to 2 decimals.
func (r WeatherReading) CSVRecord() []string {
	return []string{
		r.Timestamp.Format(WeatherTimestampLayout),
		fmt.Sprintf("%.2f", r.Temperature),
		fmt.Sprintf("%.2f", r.Humidity),
		fmt.Sprintf("%.2f", r.Pressure),
	}
}
