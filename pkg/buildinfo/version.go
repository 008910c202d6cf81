// Package buildinfo reports which snhsdiag build is running.
//
// Release builds stamp the variables at link time:
//
//	go build -ldflags "-X github.com/matzehuels/snhsdiag/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/snhsdiag/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
//
// Binaries built with plain go build or go install fall back to the module
// version and VCS stamps recorded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Link-time values. Empty or "dev" means not stamped.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is the resolved build description served by /healthz and --version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

// Get merges the link-time variables with the toolchain build info.
// Stamped values win.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	return merge(info, bi)
}

func merge(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	if (info.Version == "" || info.Version == "dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit returns the first 12 characters of the commit.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}

func (i Info) String() string {
	commit := or(i.ShortCommit(), "none")
	if i.Modified {
		commit += " (modified)"
	}
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", i.Version, commit, or(i.Date, "unknown"), or(i.GoVersion, "unknown"))
}

// Template returns the cobra version template for the running build.
func Template() string {
	return "{{.Name}} " + Get().String() + "\n"
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
