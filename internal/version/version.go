// Package version contains build information injected via ldflags.
package version

import "runtime/debug"

// Version information for conman
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the version string. Builds installed with `go install`
// fall back to the module version recorded in the binary.
func GetVersion() string {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return Version
}

// GetFullVersion returns version with build metadata
func GetFullVersion() string {
	return GetVersion() + " (build: " + BuildDate + ", commit: " + GitCommit + ")"
}

// UserAgent is sent by the dashboard client on every request to the server.
func UserAgent() string {
	return "conman/" + GetVersion()
}
