package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDayOfNormalizesToLocalDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cal := Calendar{Location: ny, WeekStart: time.Sunday}

	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "just after local midnight",
			instant:  time.Date(2026, 10, 14, 0, 0, 1, 0, ny),
			expected: "2026-10-14",
		},
		{
			name:     "late evening",
			instant:  time.Date(2026, 10, 14, 23, 59, 59, 0, ny),
			expected: "2026-10-14",
		},
		{
			name:     "utc instant already next day",
			instant:  time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC),
			expected: "2026-10-14",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.DayOf(tt.instant).String(); got != tt.expected {
				t.Errorf("DayOf() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestStartOfDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cal := Calendar{Location: ny}

	// 2026-11-01 is the fall-back day in New York.
	d := MustParseDay("2026-11-01")
	if got := d.AddDays(1).String(); got != "2026-11-02" {
		t.Errorf("AddDays across DST = %s, want 2026-11-02", got)
	}
	start := cal.StartOfDay(time.Date(2026, 11, 1, 15, 0, 0, 0, ny))
	if start.Hour() != 0 || start.Day() != 1 {
		t.Errorf("StartOfDay = %v, want local midnight", start)
	}
}

func TestDayJSONRoundTrip(t *testing.T) {
	in := []Day{MustParseDay("2026-01-31"), MustParseDay("2024-02-29")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `["2026-01-31","2024-02-29"]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var out []Day
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("day %d: got %s, want %s", i, out[i], in[i])
		}
	}

	var bad Day
	if err := json.Unmarshal([]byte(`"2026-13-01"`), &bad); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestStartOfWeek(t *testing.T) {
	wed := MustParseDay("2026-10-14")
	tests := []struct {
		weekStart time.Weekday
		expected  string
		index     int
	}{
		{time.Sunday, "2026-10-11", 3},
		{time.Monday, "2026-10-12", 2},
		{time.Wednesday, "2026-10-14", 0},
		{time.Thursday, "2026-10-08", 6},
	}
	for _, tt := range tests {
		t.Run(tt.weekStart.String(), func(t *testing.T) {
			cal := Calendar{WeekStart: tt.weekStart}
			if got := cal.StartOfWeek(wed).String(); got != tt.expected {
				t.Errorf("StartOfWeek() = %s, want %s", got, tt.expected)
			}
			if got := cal.WeekdayIndex(wed); got != tt.index {
				t.Errorf("WeekdayIndex() = %d, want %d", got, tt.index)
			}
		})
	}
}

func TestDayArithmetic(t *testing.T) {
	d := MustParseDay("2026-10-17")
	if d.DaysUntil(d.AddDays(-30)) != -30 {
		t.Error("DaysUntil should be negative for earlier days")
	}
	if d.DaysInMonth() != 31 {
		t.Errorf("DaysInMonth() = %d, want 31", d.DaysInMonth())
	}
	if d.AddMonths(1).StartOfMonth().String() != "2026-11-01" {
		t.Errorf("AddMonths(1).StartOfMonth() = %s", d.AddMonths(1).StartOfMonth())
	}
	if !(Day{}).IsZero() || d.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{"": time.Sunday, "Mon": time.Monday, "saturday": time.Saturday, "3": time.Wednesday} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWeekday("funday"); err == nil {
		t.Error("expected error for invalid weekday")
	}
}

func TestNew(t *testing.T) {
	if _, err := New("Invalid/Zone", "sunday"); err == nil {
		t.Error("expected error for invalid timezone")
	}
	cal, err := New("UTC", "monday")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cal.WeekStart != time.Monday || cal.Location != time.UTC {
		t.Errorf("unexpected calendar %+v", cal)
	}
	fixed := FixedClock{T: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	if cal.Today(fixed).String() != "2026-10-17" {
		t.Errorf("Today() = %s", cal.Today(fixed))
	}
}
