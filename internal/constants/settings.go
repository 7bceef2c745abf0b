package constants

const (
	// Settings keys
	SettingTimezone     = "timezone"
	SettingWeekStart    = "week_start"
	SettingDefaultIcon  = "default_icon"
	SettingDefaultColor = "default_color"

	// Default Settings Values
	DefaultTimezone  = "Local" // Use system local timezone by default
	DefaultWeekStart = "sunday"
	DefaultIcon      = "star.fill"
	DefaultColor     = "#FF5A5F"
)
