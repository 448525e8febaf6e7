package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySettings(t *testing.T) {
	info := BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2024-05-01T10:20:30Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, "0123456", info.ShortCommit())
	assert.Equal(t, "2024-05-01T10:20:30Z", info.BuildDate)
	assert.True(t, info.Modified)
}

func TestApplySettings_LdflagsWin(t *testing.T) {
	info := BuildInfo{Version: "1.0.0", GitCommit: "feedbee", BuildDate: "yesterday"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2024-05-01T10:20:30Z"},
	})

	assert.Equal(t, "feedbee", info.GitCommit)
	assert.Equal(t, "yesterday", info.BuildDate)
}

func TestBuildInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "release",
			info: BuildInfo{Version: "1.2.0", GitCommit: "abc", BuildDate: "unknown", GoVersion: "go1.23", Platform: "linux/amd64"},
			want: "nesemu 1.2.0 (go1.23, linux/amd64)",
		},
		{
			name: "dev build with commit",
			info: BuildInfo{Version: "dev", GitCommit: "0123456789", BuildDate: "2024-05-01T10:20:30Z", GoVersion: "go1.23", Platform: "linux/amd64", Modified: true},
			want: "nesemu dev-0123456+dirty built 2024-05-01 10:20 (go1.23, linux/amd64)",
		},
		{
			name: "unparsed date",
			info: BuildInfo{Version: "1.0", GitCommit: "unknown", BuildDate: "today", GoVersion: "go1.23", Platform: "darwin/arm64"},
			want: "nesemu 1.0 built today (go1.23, darwin/arm64)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestPrintBuildInfo(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildInfo(&buf)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "nesemu "))
	assert.Contains(t, out, "Go Version:")
	assert.Contains(t, out, "Platform:")
}
