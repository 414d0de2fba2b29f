package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "release",
			info: Info{Version: "1.2.3", Commit: "0123456789abcdef", Date: "2026-01-02T03:04:05Z", GoVersion: "go1.25.1", Platform: "linux/amd64"},
			want: "colourmask version 1.2.3 (commit: 01234567, built: 2026-01-02T03:04:05Z, go1.25.1, linux/amd64)",
		},
		{
			name: "short commit kept whole",
			info: Info{Version: "1.2.3", Commit: "abc", Date: "2026-01-02", GoVersion: "go1.25.1", Platform: "linux/arm64"},
			want: "colourmask version 1.2.3 (commit: abc, built: 2026-01-02, go1.25.1, linux/arm64)",
		},
		{
			name: "no commit",
			info: Info{Version: "dev", Commit: unset, Date: unset, GoVersion: "go1.25.1", Platform: "darwin/arm64"},
			want: "colourmask version dev (go1.25.1, darwin/arm64)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithBuildInfo(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "fedcba9876543210"},
		{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name string
		info Info
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "fills defaults from module and vcs",
			info: Info{Version: "dev", Commit: unset, Date: unset},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}, Settings: vcs},
			want: Info{Version: "v0.4.0", Commit: "fedcba9876543210-dirty", Date: "2026-03-04T05:06:07Z"},
		},
		{
			name: "ldflags win",
			info: Info{Version: "1.0.0", Commit: "abc", Date: "2026-01-01"},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}, Settings: vcs},
			want: Info{Version: "1.0.0", Commit: "abc", Date: "2026-01-01"},
		},
		{
			name: "devel module keeps dev",
			info: Info{Version: "dev", Commit: unset, Date: unset},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: unset, Date: unset},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withBuildInfo(tt.info, &tt.bi)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("withBuildInfo() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "1.2.3"
	if got := String(); !strings.HasPrefix(got, "colourmask version 1.2.3 (") {
		t.Errorf("String() = %q", got)
	}
	if got := Short(); got != "1.2.3" {
		t.Errorf("Short() = %q, want 1.2.3", got)
	}
}
