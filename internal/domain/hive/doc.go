// Package hive contains the domain types of the hive monitors.
//
// Position and WeatherReading are ephemeral records produced once per loop
// iteration; AlertMessage is an SMS built at the call site. Geofence and
// WeatherThresholds turn readings into advisory Alerts.
package hive
