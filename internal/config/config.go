// Package config loads the process configuration shared by both binaries
// from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/constants"
)

const (
	EnvGroupDir = "PEAKSTREAK_GROUP_DIR"
	EnvDatabase = "PEAKSTREAK_DATABASE"

	// KeyringDatabase as the database value reads the PostgreSQL
	// connection string from the OS keyring.
	KeyringDatabase = "keyring"

	FamilySmall  = "small"
	FamilyMedium = "medium"
)

// Config is the on-disk configuration. Timezone and WeekStart are left
// empty to defer to the settings stored in the database; the widget
// process, which has no database, treats empty as Local and Sunday.
type Config struct {
	Database       string       `yaml:"database"`
	GroupDir       string       `yaml:"group_dir"`
	Timezone       string       `yaml:"timezone"`
	WeekStart      string       `yaml:"week_start"`
	PublishOnStart bool         `yaml:"publish_on_start"`
	Widget         WidgetConfig `yaml:"widget"`
}

// WidgetConfig controls what the widget shows and how often it refreshes.
type WidgetConfig struct {
	HabitID         string        `yaml:"habit_id"`
	Family          string        `yaml:"family"`
	MaxStaleness    time.Duration `yaml:"max_staleness"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Dir returns the expanded configuration directory.
func Dir() string {
	return ExpandPath(constants.DefaultConfigDir)
}

// DefaultPath returns the location of config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), constants.ConfigFileName)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := Dir()
	return &Config{
		Database:       filepath.Join(dir, constants.DefaultDBName),
		GroupDir:       filepath.Join(dir, constants.AppGroupID),
		PublishOnStart: true,
		Widget: WidgetConfig{
			Family:          FamilySmall,
			MaxStaleness:    constants.DefaultMaxStaleness,
			RefreshInterval: constants.DefaultRefreshInterval,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvGroupDir); v != "" {
		c.GroupDir = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.GroupDir == "" {
		c.GroupDir = def.GroupDir
	}
	c.GroupDir = ExpandPath(c.GroupDir)
	if !IsPostgres(c.Database) && c.Database != KeyringDatabase {
		c.Database = ExpandPath(c.Database)
	}
	if c.Widget.Family == "" {
		c.Widget.Family = FamilySmall
	}
	if c.Widget.MaxStaleness <= 0 {
		c.Widget.MaxStaleness = constants.DefaultMaxStaleness
	}
	if c.Widget.RefreshInterval <= 0 {
		c.Widget.RefreshInterval = constants.DefaultRefreshInterval
	}
}

// Validate checks values the YAML decoder cannot.
func (c *Config) Validate() error {
	if _, err := calendar.New(c.Timezone, c.WeekStart); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Widget.Family {
	case FamilySmall, FamilyMedium:
	default:
		return fmt.Errorf("config: unsupported widget family %q (use small or medium)", c.Widget.Family)
	}
	return nil
}

// Calendar returns the calendar described by Timezone and WeekStart.
func (c *Config) Calendar() calendar.Calendar {
	cal, err := calendar.New(c.Timezone, c.WeekStart)
	if err != nil {
		return calendar.Default()
	}
	return cal
}

// GridWeeks returns the number of grid columns for the widget family.
func (w WidgetConfig) GridWeeks() int {
	if w.Family == FamilyMedium {
		return constants.MediumWidgetWeeks
	}
	return constants.SmallWidgetWeeks
}

// LockfilePath is where the widget host advertises its reload endpoint.
func (c *Config) LockfilePath() string {
	return filepath.Join(c.GroupDir, constants.WidgetLockfileName)
}

// IsPostgres reports whether s is a PostgreSQL connection string rather
// than a SQLite path.
func IsPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		strings.Contains(s, "host=")
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
