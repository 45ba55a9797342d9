// Package config defines the settings shared by the hive binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Config has one section per peripheral (gps, modem, weather) plus the optional
// MQTT telemetry section. A missing settings file is not an error: the defaults
// reproduce the behaviour of the standalone field scripts.
package config
