// Package version reports how the libref binary was built.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set with ldflags by release builds:
//
//	go build -ldflags "-X github.com/teranos/libref/version.Version=v0.3.0 -X github.com/teranos/libref/version.CommitHash=$(git rev-parse HEAD)"
//
// Left empty, they fall back to the module and VCS stamps of the binary.
var (
	Version    string
	CommitHash string
	BuildTime  string
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version" yaml:"version"`
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildTime  string `json:"build_time" yaml:"build_time"`
	Modified   bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion  string `json:"go_version" yaml:"go_version"`
	Platform   string `json:"platform" yaml:"platform"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.CommitHash == "" {
		info.CommitHash = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// fill takes whatever ldflags did not set from the embedded build info.
func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.CommitHash == "" {
				i.CommitHash = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

func (i Info) String() string {
	s := "libref " + i.Version + " (commit " + i.Short()
	if i.Modified {
		s += "+dirty"
	}
	return s + ", built " + i.BuildTime + ")"
}

// Short is the commit hash cut to seven characters.
func (i Info) Short() string {
	if len(i.CommitHash) > 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
