package config

import "strings"

// Set with -ldflags at release time:
//
//	go build -ldflags "-X casenotify/internal/config.version=$(git describe --tags) \
//	    -X casenotify/internal/config.commit=$(git rev-parse --short HEAD) \
//	    -X casenotify/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// BuildInfo identifies the running binary. It is logged at startup and
// reported by the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// NewBuildInfo reads the linker-injected values.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// ServiceVersion renders the version with exactly one "v" prefix, so both
// "1.4.0" and "v1.4.0" tags print as "v1.4.0".
func (b BuildInfo) ServiceVersion() string {
	return "v" + strings.TrimPrefix(b.Version, "v")
}
