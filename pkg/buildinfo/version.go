// Package buildinfo reports which craneplan build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/craneplan/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/craneplan/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/craneplan/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the VCS data the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build identity served by the API's /version route.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get returns the stamped build information, completed from the embedded
// module and VCS data where the ldflags left defaults.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fill(info, bi)
}

func fill(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Template returns the cobra version template.
func Template() string {
	info := Get()
	commit := info.Commit
	if info.Modified {
		commit += " (modified)"
	}
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", info.Version, commit, info.Date)
}
