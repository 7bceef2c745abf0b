package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/validation"
)

// HabitFormModel holds the values edited by the habit form.
type HabitFormModel struct {
	Name  string
	Icon  string
	Color string
}

var iconOptions = []string{
	"star.fill", "figure.run", "figure.walk", "book.fill", "drop.fill",
	"heart.fill", "bed.double.fill", "leaf.fill", "flame.fill", "dumbbell.fill",
	"pencil", "music.note",
}

// NewHabitForm creates the interactive form for adding or editing a habit.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	icons := make([]huh.Option[string], 0, len(iconOptions))
	for _, icon := range iconOptions {
		icons = append(icons, huh.NewOption(icon, icon))
	}
	colors := make([]huh.Option[string], 0, len(color.Presets))
	for _, p := range color.Presets {
		colors = append(colors, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Hex), p.Hex))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(validation.SanitizeText(s)) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Icon").
				Options(icons...).
				Value(&fm.Icon),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&fm.Color),
		),
	).WithTheme(huh.ThemeDracula())
}
