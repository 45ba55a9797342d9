// Package version exposes build metadata for the hive binaries.
//
// Version, Commit and BuildTime are injected through -ldflags; the defaults
// identify a local build.
package version
