// Package version reports the build of the churnlab binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty"`
	Module    string `json:"module,omitempty"`
}

// Info returns the build information, filling the commit from the embedded
// VCS settings when ldflags did not set it.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Dirty:     strings.Contains(GitCommit, "-dirty"),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Module = buildInfo.Main.Path
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == unknownValue {
					info.GitCommit = setting.Value
				}
			case "vcs.modified":
				info.Dirty = info.Dirty || setting.Value == "true"
			}
		}
	}

	return info
}

// Short returns the version with the abbreviated commit.
func (b BuildInfo) Short() string {
	if b.GitCommit == unknownValue || b.GitCommit == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, abbreviate(b.GitCommit))
}

// String returns a formatted version string
func (b BuildInfo) String() string {
	var sb strings.Builder
	sb.WriteString("churnlab customer churn analysis\n")
	sb.WriteString(fmt.Sprintf("Version: %s", b.Version))

	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue {
		sb.WriteString(fmt.Sprintf("Build Date: %s\n", b.BuildDate))
	}

	if b.GitCommit != unknownValue {
		sb.WriteString(fmt.Sprintf("Git Commit: %s\n", abbreviate(b.GitCommit)))
	}

	sb.WriteString(fmt.Sprintf("Go Version: %s\n", b.GoVersion))

	if b.Module != "" {
		sb.WriteString(fmt.Sprintf("Module: %s\n", b.Module))
	}

	return sb.String()
}

func abbreviate(commit string) string {
	if len(commit) > commitHashLength {
		return commit[:commitHashLength]
	}
	return commit
}
