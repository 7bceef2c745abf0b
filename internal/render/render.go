// Package render draws contribution grids and month calendars for the
// terminal with lipgloss.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/streak"
)

const (
	// Background is the colour cells are blended over.
	Background = "#1C1C1E"
	emptyHex   = "#3A3A3C"
	futureHex  = "#242426"

	cellGlyph = "■"
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	StreakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	todayStyle = lipgloss.NewStyle().Underline(true)
)

var icons = map[string]string{
	"star.fill":       "★",
	"figure.run":      "🏃",
	"figure.walk":     "🚶",
	"book.fill":       "📖",
	"drop.fill":       "💧",
	"heart.fill":      "♥",
	"bed.double.fill": "🛏",
	"leaf.fill":       "🌿",
	"flame.fill":      "🔥",
	"dumbbell.fill":   "🏋",
	"pencil":          "✎",
	"music.note":      "♪",
}

// Icon returns a terminal glyph for a symbol name.
func Icon(name string) string {
	if g, ok := icons[name]; ok {
		return g
	}
	return "●"
}

// CellColor returns the colour a cell is drawn in. With intensity set,
// completed cells are faded by their density tier; otherwise they use the
// full habit colour.
func CellColor(c streak.Cell, hex string, intensity bool) string {
	switch c.State {
	case streak.CellFuture:
		return futureHex
	case streak.CellCompleted:
		alpha := 1.0
		if intensity {
			alpha = c.Intensity.Opacity()
		}
		bg, _ := color.Parse(Background)
		return color.WithOpacity(color.Resolve(hex), bg, alpha)
	default:
		return emptyHex
	}
}

// Grid draws week columns with weekdays as rows.
func Grid(cells [][]streak.Cell, hex string, intensity bool) string {
	if len(cells) == 0 {
		return ""
	}
	rows := make([]string, 0, 7)
	for day := 0; day < len(cells[0]); day++ {
		var b strings.Builder
		for w, week := range cells {
			if day >= len(week) {
				continue
			}
			if w > 0 {
				b.WriteByte(' ')
			}
			c := week[day]
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(CellColor(c, hex, intensity)))
			b.WriteString(style.Render(cellGlyph))
		}
		rows = append(rows, b.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Month draws the calendar month containing day. Completed days are filled
// with the habit colour and today is underlined.
func Month(set streak.DaySet, day, today calendar.Day, weekStart time.Weekday, hex string) string {
	padding, days := streak.MonthGrid(day, weekStart)

	var lines []string
	header := fmt.Sprintf("%s %d", day.Month(), day.Year())
	lines = append(lines, TitleStyle.Render(header))

	labels := make([]string, 7)
	for i := range labels {
		labels[i] = fmt.Sprintf("%2s", time.Weekday((int(weekStart)+i)%7).String()[:2])
	}
	lines = append(lines, MutedStyle.Render(strings.Join(labels, " ")))

	cells := make([]string, 0, padding+len(days))
	for i := 0; i < padding; i++ {
		cells = append(cells, "  ")
	}
	for _, d := range days {
		label := fmt.Sprintf("%2d", d.DayOfMonth())
		state := streak.CellStateFor(set, d, today)
		style := lipgloss.NewStyle()
		switch state {
		case streak.CellCompleted:
			style = style.Foreground(lipgloss.Color(Background)).Background(lipgloss.Color(color.Normalize(hex)))
		case streak.CellFuture:
			style = MutedStyle
		}
		if d == today {
			style = style.Inherit(todayStyle)
		}
		cells = append(cells, style.Render(label))
	}
	for start := 0; start < len(cells); start += 7 {
		end := start + 7
		if end > len(cells) {
			end = len(cells)
		}
		lines = append(lines, strings.Join(cells[start:end], " "))
	}
	return strings.Join(lines, "\n")
}

// Percent formats a completion rate.
func Percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
