// Package weather polls the hive weather sensor, keeps the CSV weather log
// and raises heat and humidity advisories.
package weather
