// Package version reports build information for colourmask.
//
// Release builds inject Version, Commit and Date with ldflags. Builds made
// with "go install" or from a checkout fall back to the module and VCS
// details the toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unset = "unknown"

var (
	// Version is set with -ldflags "-X github.com/jmylchreest/colourmask/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is set with -ldflags "-X github.com/jmylchreest/colourmask/internal/version.Commit=$(git rev-parse HEAD)".
	Commit = unset

	// Date is set with -ldflags "-X github.com/jmylchreest/colourmask/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)".
	Date = unset
)

// Info is the resolved build description.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo resolves the build description, preferring ldflags values.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo fills fields the linker left at their defaults.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	var revision, modified, when string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			when = s.Value
		}
	}
	if info.Commit == unset && revision != "" {
		info.Commit = revision
		if modified == "true" {
			info.Commit += "-dirty"
		}
	}
	if info.Date == unset && when != "" {
		info.Date = when
	}
	return info
}

// String returns a human-readable version string.
func String() string {
	return GetInfo().String()
}

func (i Info) String() string {
	if i.Commit != unset && i.Date != unset {
		return fmt.Sprintf("colourmask version %s (commit: %s, built: %s, %s, %s)",
			i.Version, shortCommit(i.Commit), i.Date, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("colourmask version %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
}

// Short returns the bare version, as reported in plugin metadata.
func Short() string {
	return GetInfo().Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
