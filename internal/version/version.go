package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// Commit is the short git SHA embedded at build time.
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Describe renders the version line of a binary, e.g. "hive-weather 0.3.0 (commit abc123, built 2026-04-01)".
func Describe(binary string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", binary, Version, Commit, BuildTime)
}
