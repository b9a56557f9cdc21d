package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	return func() {
		Version = origVersion
		Commit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	Commit = ""
	BuildTime = ""

	info := Get()
	if info.GoVersion == "" {
		t.Error("expected Go version to be filled")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("expected os/arch platform, got %q", info.Platform)
	}
}

func TestGetWithLinkerFlags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	Commit = "abc1234def"
	BuildTime = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.Commit != "abc1234" {
		t.Errorf("expected commit shortened to 'abc1234', got %q", info.Commit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestApplyBuildInfo(t *testing.T) {
	info := Info{Version: "dev"}
	applyBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.2"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-03-01T08:00:00Z"},
		},
	})
	if info.Version != "1.4.2" {
		t.Errorf("expected module version, got %q", info.Version)
	}
	if info.Commit != "0123456" {
		t.Errorf("expected short revision, got %q", info.Commit)
	}
	if !info.Dirty {
		t.Error("expected dirty build")
	}
	if info.BuildDate.Month() != time.March {
		t.Errorf("expected vcs time, got %v", info.BuildDate)
	}
}

func TestApplyBuildInfoKeepsLinkerValues(t *testing.T) {
	info := Info{Version: "2.0.0", Commit: "feedbee"}
	applyBuildInfo(&info, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}},
	})
	if info.Version != "2.0.0" || info.Commit != "feedbee" {
		t.Errorf("linker values overwritten: %+v", info)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0", Dirty: true}, false},
		{Info{Version: "1.0.0-dirty"}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v: expected %v, got %v", tc.info, tc.want, got)
		}
	}
}

func TestShort(t *testing.T) {
	if got := (Info{Version: "dev"}).Short(); got != "dev" {
		t.Errorf("expected 'dev', got %q", got)
	}
	if got := (Info{Version: "1.0.0", Commit: "abc1234"}).Short(); got != "1.0.0-abc1234" {
		t.Errorf("expected '1.0.0-abc1234', got %q", got)
	}
	if got := (Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}).Short(); got != "1.0.0-abc1234-dirty" {
		t.Errorf("expected dirty suffix, got %q", got)
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		Commit:    "abc1234",
		GoVersion: "go1.26.0",
		Platform:  "linux/amd64",
		BuildDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	want := "butler 1.0.0-abc1234 (go1.26.0, linux/amd64, built 2024-01-15T10:30:00Z)"
	if got := info.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
