// Package telemetry publishes hive readings and alerts to an MQTT broker so an
// external supervisor can react to them (for instance by triggering hive-sms).
//
// Publishing is best effort. When no broker is configured the services use
// Noop, and every publish is discarded.
package telemetry
