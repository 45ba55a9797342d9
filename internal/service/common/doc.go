// Package common holds helpers shared by several services.
//
// It detects the station identity used in telemetry topics and guards the
// exclusive hardware handles by refusing to start a second instance of the
// same binary.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
