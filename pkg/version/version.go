// Package version provides build metadata and version information.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/NERVsystems/pathclear/pkg/version.BuildVersion=...".
var (
	// BuildVersion is the semantic version of the build
	BuildVersion = "0.1.0"

	// BuildCommit is the git commit hash of the build
	BuildCommit = "unknown"

	// BuildDate is the date and time of the build
	BuildDate = "unknown"

	// GoVersion is the version of Go used to build
	GoVersion = runtime.Version()
)

// String returns a formatted version string for the named command.
func String(command string) string {
	return fmt.Sprintf("%s version %s (%s) built on %s with %s",
		command, BuildVersion, BuildCommit, BuildDate, GoVersion)
}

// Info returns a map of version information
func Info() map[string]string {
	return map[string]string{
		"version":    BuildVersion,
		"commit":     BuildCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
	}
}
