package constants

import "time"

const (
	AppName            = "peakstreak"
	WidgetAppName      = "peakstreak-widget"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/peakstreak"
	DefaultDBName      = "peakstreak.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Shared suite constants
	AppGroupID        = "group.com.julianstephens.peakstreak"
	WidgetHabitsKey   = "widgetHabits"
	WidgetCalendarKey = "widgetCalendar"
	SuiteLockName     = ".suite.lock"

	// Widget host constants
	WidgetLockfileName = "peakstreak-widget.lock"
	ReloadPath         = "/reload"
	HealthPath         = "/healthz"
	SecretHeader       = "X-Peakstreak-Secret"
	ReloadMaxRetries   = 3
	ReloadRetryDelay   = 100 * time.Millisecond
	ReloadTimeout      = 2 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "peakstreak-"
	BackupFileSuffix = ".db"

	// Grid constants
	DefaultGridWeeks  = 10
	SmallWidgetWeeks  = 11
	MediumWidgetWeeks = 26
	MaxGridWeeks      = 52

	// Widget timeline constants
	DefaultRefreshInterval = time.Hour
	DefaultMaxStaleness    = 7 * 24 * time.Hour

	// Media constants
	MaxMediaBytes = 10 << 20
)
