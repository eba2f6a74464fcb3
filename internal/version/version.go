// Package version carries the build identity stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/emergent-company/emergent.relations/internal/version.Version=1.2.0"
package version

import "log/slog"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// VersionInfo is the build identity reported by /debug and the startup log.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Info returns the stamped build identity.
func Info() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

// LogValue implements slog.LogValuer.
func (v VersionInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", v.Version),
		slog.String("commit", v.GitCommit),
		slog.String("built", v.BuildTime),
	)
}
