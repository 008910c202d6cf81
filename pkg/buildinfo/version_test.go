package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Path: "github.com/matzehuels/snhsdiag", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name        string
		stamped     Info
		wantVersion string
		wantCommit  string
	}{
		{"unstamped", Info{Version: "dev"}, "v0.3.0", "0123456789ab"},
		{"stamped wins", Info{Version: "v1.0.0", Commit: "feedface"}, "v1.0.0", "feedface"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := merge(tt.stamped, bi)
			if got.Version != tt.wantVersion || got.ShortCommit() != tt.wantCommit {
				t.Errorf("merge() = %+v", got)
			}
			if got.GoVersion != "go1.24.0" || !got.Modified {
				t.Errorf("toolchain fields not merged: %+v", got)
			}
		})
	}
}

func TestMergeDevelBuild(t *testing.T) {
	got := merge(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev for a local build", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: ") {
		t.Errorf("Template() = %q", tmpl)
	}
	for _, want := range []string{"commit: ", "built: ", "go: "} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() missing %q", want)
		}
	}
}
