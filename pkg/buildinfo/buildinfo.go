package buildinfo

import "runtime"

// These vars are set at build time via ldflags:
// -X github.com/otherjamesbrown/minutes-cli/pkg/buildinfo.Version=v0.3.0
// -X github.com/otherjamesbrown/minutes-cli/pkg/buildinfo.Commit=a1b2c3d
// -X github.com/otherjamesbrown/minutes-cli/pkg/buildinfo.BuildTime=2026-08-27T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for the CLI.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-liner like "v0.3.0 (a1b2c3d, 2026-08-27T10:30:00Z)".
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}
