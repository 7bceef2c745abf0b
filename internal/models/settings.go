package models

// Settings holds persisted user preferences. Timezone is an IANA zone name
// or "Local"; WeekStart names the first column of contribution grids.
type Settings struct {
	Timezone     string `json:"timezone" validate:"omitempty,iana_tz"`
	WeekStart    string `json:"week_start" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	DefaultIcon  string `json:"default_icon" validate:"required,habit_icon"`
	DefaultColor string `json:"default_color" validate:"required,len=7,hexcolor"`
}
