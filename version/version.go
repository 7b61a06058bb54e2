// Package version reports the gomol build. The variables are set via ldflags:
//
//	-X github.com/philipparndt/gomol/version.Version=v0.3.0
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the build info
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with a short commit and the build date
func GetFullVersion() string {
	if Version == "dev" {
		return "dev"
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildDate)
}
