package widget

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/render"
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

var emptyMessages = map[EmptyReason]string{
	ReasonNoHabits:    "No habits yet.\nAdd one with 'peakstreak habit add'.",
	ReasonUnavailable: "Nothing to show yet.\nOpen peakstreak to sync.",
	ReasonStale:       "Habit data is out of date.\nOpen peakstreak to sync.",
}

// Render draws the widget card for v.
func Render(v View) string {
	if v.Empty {
		msg, ok := emptyMessages[v.Reason]
		if !ok {
			msg = emptyMessages[ReasonUnavailable]
		}
		return cardStyle.Render(render.MutedStyle.Render(msg))
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(color.Normalize(v.ColorHex)))
	title := accent.Render(render.Icon(v.Icon)) + " " + render.TitleStyle.Render(v.Name)

	status := render.MutedStyle.Render("○ not done today")
	if v.CompletedToday {
		status = accent.Render("✓ done today")
	}
	streakLine := render.StreakStyle.Render(fmt.Sprintf("%d", v.CurrentStreak)) + render.MutedStyle.Render(" day streak")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		render.Grid(v.Cells, v.ColorHex, true),
		"",
		streakLine,
		status,
	)
	return cardStyle.Render(body)
}
