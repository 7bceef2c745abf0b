package habits

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/ledger"
)

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day as YYYY-MM-DD, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	at, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	done, err := ctx.Ledger.ToggleCompletion(h.ID, at)
	if errors.Is(err, ledger.ErrFutureDay) {
		return fmt.Errorf("cannot mark %s: future days are not editable", ctx.Ledger.Day(at))
	}
	if err != nil {
		return err
	}

	day := ctx.Ledger.Day(at)
	if done {
		fmt.Printf("Marked habit %q for %s\n", h.Name, day)
	} else {
		fmt.Printf("Unmarked habit %q for %s\n", h.Name, day)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Ledger.Habits()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Ledger.Today()
	fmt.Printf("Habits for %s:\n\n", today)
	for _, h := range habits {
		set, err := ctx.Ledger.DaySet(h.ID)
		if err != nil {
			return err
		}
		status := "[ ]"
		if set.Contains(today) {
			status = "[x]"
		}
		fmt.Printf("%s %s\n", status, h.Name)
	}

	done, total, err := ctx.Ledger.CompletedToday()
	if err != nil {
		return err
	}
	fmt.Printf("\nCompleted: %d/%d\n", done, total)
	return nil
}

type HabitNoteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Text  string `arg:"" optional:"" help:"Note text."`
	Date  string `help:"Day as YYYY-MM-DD, 'today' or 'yesterday'." default:"today"`
	Clear bool   `help:"Remove the note."`
}

func (c *HabitNoteCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	at, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	text := c.Text
	if c.Clear {
		text = ""
	} else if text == "" {
		e, ok, err := ctx.Ledger.EntryFor(h.ID, at)
		if err != nil {
			return err
		}
		if !ok || e.Note == "" {
			fmt.Printf("No note for %q on %s\n", h.Name, ctx.Ledger.Day(at))
			return nil
		}
		fmt.Println(e.Note)
		return nil
	}

	if _, err := ctx.Ledger.SetNote(h.ID, at, text); err != nil {
		return err
	}
	if text == "" {
		fmt.Printf("Cleared note for %q on %s\n", h.Name, ctx.Ledger.Day(at))
	} else {
		fmt.Printf("Saved note for %q on %s\n", h.Name, ctx.Ledger.Day(at))
	}
	return nil
}

type HabitAttachCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	File  string `arg:"" type:"existingfile" help:"Image file to attach."`
	Date  string `help:"Day as YYYY-MM-DD, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitAttachCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	at, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	m, err := ctx.Ledger.AttachMedia(h.ID, at, data)
	if err != nil {
		return err
	}
	fmt.Printf("Attached %s (%s, %.1f KB) to %q on %s\n", m.ID, m.ContentType, float64(len(data))/1024.0, h.Name, ctx.Ledger.Day(at))
	return nil
}

type HabitDetachCmd struct {
	Habit   string `arg:"" help:"Habit name or ID."`
	MediaID string `arg:"" help:"ID of the image to remove."`
	Date    string `help:"Day as YYYY-MM-DD, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitDetachCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	at, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Ledger.RemoveMedia(h.ID, at, c.MediaID); err != nil {
		return err
	}
	fmt.Printf("Removed %s from %q on %s\n", c.MediaID, h.Name, ctx.Ledger.Day(at))
	return nil
}

type HabitMediaCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitMediaCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	entries, err := ctx.Ledger.EntriesWithMedia(h.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No images attached to %q.\n", h.Name)
		return nil
	}

	for _, e := range entries {
		status := " "
		if e.Completed {
			status = "✓"
		}
		fmt.Printf("%s %s\n", status, e.Day)
		for _, m := range e.Media {
			fmt.Printf("    %s  %s\n", m.ID, m.ContentType)
		}
		if e.Note != "" {
			fmt.Printf("    note: %s\n", e.Note)
		}
	}
	return nil
}
