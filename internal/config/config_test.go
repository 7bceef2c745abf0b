package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/peakstreak/internal/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), constants.ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvGroupDir, "")
	t.Setenv(EnvDatabase, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.PublishOnStart {
		t.Error("PublishOnStart should default to true")
	}
	if cfg.Widget.Family != FamilySmall || cfg.Widget.GridWeeks() != constants.SmallWidgetWeeks {
		t.Errorf("unexpected widget defaults %+v", cfg.Widget)
	}
	if cfg.Widget.MaxStaleness != constants.DefaultMaxStaleness || cfg.Widget.RefreshInterval != time.Hour {
		t.Errorf("unexpected durations %+v", cfg.Widget)
	}
	if !strings.HasSuffix(cfg.Database, constants.DefaultDBName) {
		t.Errorf("Database = %s", cfg.Database)
	}
	if strings.HasPrefix(cfg.GroupDir, "~") {
		t.Errorf("GroupDir should be expanded, got %s", cfg.GroupDir)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvGroupDir, "")
	t.Setenv(EnvDatabase, "")

	path := writeConfig(t, `
database: /tmp/habits.db
group_dir: /tmp/group
timezone: UTC
week_start: monday
publish_on_start: false
widget:
  habit_id: abc
  family: medium
  max_staleness: 48h
  refresh_interval: 30m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database != "/tmp/habits.db" || cfg.GroupDir != "/tmp/group" {
		t.Errorf("unexpected paths %+v", cfg)
	}
	if cfg.PublishOnStart {
		t.Error("PublishOnStart should be false")
	}
	if cfg.Widget.HabitID != "abc" || cfg.Widget.GridWeeks() != constants.MediumWidgetWeeks {
		t.Errorf("unexpected widget %+v", cfg.Widget)
	}
	if cfg.Widget.MaxStaleness != 48*time.Hour || cfg.Widget.RefreshInterval != 30*time.Minute {
		t.Errorf("unexpected durations %+v", cfg.Widget)
	}
	cal := cfg.Calendar()
	if cal.Location != time.UTC || cal.WeekStart != time.Monday {
		t.Errorf("unexpected calendar %+v", cal)
	}
	if cfg.LockfilePath() != filepath.Join("/tmp/group", constants.WidgetLockfileName) {
		t.Errorf("LockfilePath = %s", cfg.LockfilePath())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvGroupDir, "/srv/group")
	t.Setenv(EnvDatabase, "postgres://db.example.com/peakstreak")

	cfg, err := Load(writeConfig(t, "group_dir: /tmp/ignored\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GroupDir != "/srv/group" {
		t.Errorf("GroupDir = %s, want env override", cfg.GroupDir)
	}
	if !IsPostgres(cfg.Database) {
		t.Errorf("Database = %s, want postgres override", cfg.Database)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvGroupDir, "")
	t.Setenv(EnvDatabase, "")

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "widget: [unclosed"},
		{"bad timezone", "timezone: Mars/Olympus"},
		{"bad week start", "week_start: funday"},
		{"bad family", "widget:\n  family: large"},
		{"bad duration", "widget:\n  max_staleness: soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.config/peakstreak", filepath.Join(home, ".config/peakstreak")},
		{"/abs/path", "/abs/path"},
		{"relative/~", "relative/~"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPostgres(t *testing.T) {
	for in, want := range map[string]bool{
		"postgres://localhost/db":   true,
		"postgresql://localhost/db": true,
		"host=localhost dbname=db":  true,
		"~/.config/peakstreak.db":   false,
	} {
		if got := IsPostgres(in); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", in, got, want)
		}
	}
}
