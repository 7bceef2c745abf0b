package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/render"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/streak"
	"github.com/julianstephens/peakstreak/internal/tui"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Edit   HabitEditCmd   `cmd:"" help:"Rename a habit or change its icon or color."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit for a day."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's progress across habits."`
	Show   HabitShowCmd   `cmd:"" help:"Show streaks, rates and the contribution grid."`
	Log    HabitLogCmd    `cmd:"" help:"Show the contribution grid or a month calendar."`
	Note   HabitNoteCmd   `cmd:"" help:"Set or clear the note for a day."`
	Attach HabitAttachCmd `cmd:"" help:"Attach an image to a day."`
	Detach HabitDetachCmd `cmd:"" help:"Remove an attached image."`
	Media  HabitMediaCmd  `cmd:"" help:"List days with attached images."`
}

// findHabit resolves a habit by id or name with a friendly error.
func findHabit(ctx *cli.Context, ref string) (models.Habit, error) {
	h, err := ctx.Ledger.Habit(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	}
	return h, err
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Icon        string `help:"Symbol name, e.g. book.fill (default from settings)."`
	Color       string `help:"Hex color or preset name (default from settings)."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	in := ledger.HabitInput{Name: c.Name, Icon: c.Icon, Color: c.Color}

	if c.Interactive {
		fm := &tui.HabitFormModel{Name: c.Name, Icon: constants.DefaultIcon, Color: color.DefaultHex}
		if c.Icon != "" {
			fm.Icon = c.Icon
		}
		if c.Color != "" {
			fm.Color = color.Normalize(c.Color)
		}
		if err := tui.NewHabitForm(fm).Run(); err != nil {
			return err
		}
		in = ledger.HabitInput{Name: fm.Name, Icon: fm.Icon, Color: fm.Color}
	} else if c.Name == "" {
		return fmt.Errorf("habit name is required (or use --interactive)")
	}

	if c.Color != "" && !color.Valid(c.Color) {
		fmt.Printf("Unrecognized color %q, using %s\n", c.Color, color.DefaultHex)
	}

	h, err := ctx.Ledger.CreateHabit(in)
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s %s (%s)\n", render.Icon(h.Icon), h.Name, h.ColorHex)
	return nil
}

type HabitListCmd struct {
	IDs bool `help:"Show habit IDs."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Ledger.Habits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Ledger.Today()
	for _, h := range habits {
		set, err := ctx.Ledger.DaySet(h.ID)
		if err != nil {
			return err
		}
		status := "○"
		if set.Contains(today) {
			status = "✓"
		}
		line := fmt.Sprintf("%s %s %-20s %3d day streak", status, render.Icon(h.Icon), h.Name, streak.CurrentStreak(set, today))
		if c.IDs {
			line += "  " + render.MutedStyle.Render(h.ID)
		}
		fmt.Println(line)
	}

	return nil
}

type HabitEditCmd struct {
	Habit string  `arg:"" help:"Habit name or ID."`
	Name  *string `help:"New name."`
	Icon  *string `help:"New symbol name."`
	Color *string `help:"New hex color or preset name."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if c.Name == nil && c.Icon == nil && c.Color == nil {
		fmt.Println("No changes specified. Use --name, --icon or --color.")
		return nil
	}

	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}

	updated, err := ctx.Ledger.UpdateHabit(h.ID, ledger.HabitPatch{Name: c.Name, Icon: c.Icon, Color: c.Color})
	if err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s %s (%s)\n", render.Icon(updated.Icon), updated.Name, updated.ColorHex)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}

	// Deleting removes every entry and image of the habit.
	ctx.PerformAutomaticBackup()

	if err := ctx.Ledger.DeleteHabit(h.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", h.Name)
	if ctx.Store.GetConfigPath() != "" {
		fmt.Println("(A backup was taken first. Use 'peakstreak backup list' to find it)")
	}
	return nil
}
