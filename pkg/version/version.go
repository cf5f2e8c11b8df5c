package version

import "fmt"

// Overridden at build time via -ldflags.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

type Version struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

func Get() Version {
	return Version{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", v.Version, v.GitCommit, v.BuildDate)
}
