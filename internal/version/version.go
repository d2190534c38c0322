// Package version exposes build metadata injected with ldflags, e.g.
//
//	go build -ldflags "-X github.com/serviceplanpro/brandcolour/internal/version.Version=1.2.0 \
//	  -X github.com/serviceplanpro/brandcolour/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/serviceplanpro/brandcolour/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

const unknown = "unknown"

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit hash of the build.
	Commit = unknown
	// Date is the build date in RFC3339 format.
	Date = unknown
)

// Info is the build metadata reported by the version command and /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable version line.
func String() string {
	info := GetInfo()
	if Commit != unknown && Date != unknown {
		return fmt.Sprintf("brandcolour version %s (commit: %s, built: %s, %s, %s)",
			info.Version, shortCommit(info.Commit), info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("brandcolour version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
}

// Short returns the bare version.
func Short() string {
	return Version
}

// UserAgent identifies outbound logo fetches.
func UserAgent(name string) string {
	return name + "/" + Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
