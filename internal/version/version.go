// Package version provides build information for nesemu
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via -ldflags "-X nesemu/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified"`
}

// GetBuildInfo merges the ldflags values with the VCS stamp the Go
// toolchain embeds
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		applySettings(&info, bi.Settings)
	}
	return info
}

func applySettings(info *BuildInfo, settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
}

// ShortCommit returns the first seven characters of the commit hash
func (b BuildInfo) ShortCommit() string {
	if len(b.GitCommit) > 7 {
		return b.GitCommit[:7]
	}
	return b.GitCommit
}

// String returns a one-line version description
func (b BuildInfo) String() string {
	s := fmt.Sprintf("nesemu %s", b.Version)
	if b.Version == "dev" && b.GitCommit != "unknown" {
		s = fmt.Sprintf("nesemu dev-%s", b.ShortCommit())
	}
	if b.Modified {
		s += "+dirty"
	}

	if b.BuildDate != "unknown" {
		if t, err := time.Parse(time.RFC3339, b.BuildDate); err == nil {
			s += fmt.Sprintf(" built %s", t.UTC().Format("2006-01-02 15:04"))
		} else {
			s += fmt.Sprintf(" built %s", b.BuildDate)
		}
	}

	return s + fmt.Sprintf(" (%s, %s)", b.GoVersion, b.Platform)
}

// Fprint writes the full build information to w
func (b BuildInfo) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Version:     %s\n", b.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", b.GitCommit)
	fmt.Fprintf(w, "Build Date:  %s\n", b.BuildDate)
	fmt.Fprintf(w, "Go Version:  %s\n", b.GoVersion)
	fmt.Fprintf(w, "Platform:    %s\n", b.Platform)
}

// PrintBuildInfo writes the summary line and full build information to w
func PrintBuildInfo(w io.Writer) {
	info := GetBuildInfo()
	fmt.Fprintln(w, info)
	info.Fprint(w)
}
