package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/render"
	"github.com/julianstephens/peakstreak/internal/streak"
)

func clampWeeks(n int) int {
	if n < 1 {
		return 1
	}
	if n > constants.MaxGridWeeks {
		return constants.MaxGridWeeks
	}
	return n
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Weeks int    `help:"Weeks of history in the grid and weekly rates." default:"10"`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	weeks := clampWeeks(c.Weeks)

	stats, err := ctx.Ledger.Stats(h.ID, weeks)
	if err != nil {
		return err
	}
	set, err := ctx.Ledger.DaySet(h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n\n", render.Icon(h.Icon), render.TitleStyle.Render(h.Name))
	fmt.Println(render.Grid(streak.Grid(set, stats.Today, weeks, ctx.Ledger.Calendar().WeekStart), h.ColorHex, false))
	fmt.Println()

	today := "not yet"
	if stats.CompletedToday {
		today = "done"
	}
	fmt.Printf("  Today:           %s\n", today)
	fmt.Printf("  Current streak:  %s days\n", render.StreakStyle.Render(fmt.Sprintf("%d", stats.CurrentStreak)))
	fmt.Printf("  Longest streak:  %d days\n", stats.LongestStreak)
	fmt.Printf("  Total completed: %d\n", stats.TotalCompleted)
	fmt.Printf("  Last 7 days:     %s\n", render.Percent(stats.Last7Rate))
	fmt.Printf("  Last 30 days:    %s\n", render.Percent(stats.Last30Rate))

	fmt.Println("\nWeekly:")
	for _, w := range stats.Weekly {
		bar := strings.Repeat("█", w.CompletedCount) + strings.Repeat("░", w.TotalCount-w.CompletedCount)
		fmt.Printf("  %s  %-7s %d/%d  %s\n", w.WeekStart, bar, w.CompletedCount, w.TotalCount, render.Percent(w.CompletionRate()))
	}
	return nil
}

type HabitLogCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Weeks int    `help:"Number of weeks in the contribution grid." default:"10"`
	Month string `help:"Show a month calendar instead: YYYY-MM or 'current'."`
	Prev  int    `help:"With --month, step back this many months."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	h, err := findHabit(ctx, c.Habit)
	if err != nil {
		return err
	}
	set, err := ctx.Ledger.DaySet(h.ID)
	if err != nil {
		return err
	}
	today := ctx.Ledger.Today()
	weekStart := ctx.Ledger.Calendar().WeekStart

	if c.Month == "" {
		weeks := clampWeeks(c.Weeks)
		fmt.Printf("%s (last %d weeks)\n\n", h.Name, weeks)
		fmt.Println(render.Grid(streak.Grid(set, today, weeks, weekStart), h.ColorHex, false))
		return nil
	}

	month := today
	if c.Month != "current" {
		d, err := calendar.ParseDay(c.Month + "-01")
		if err != nil {
			return fmt.Errorf("invalid month: %s (expected YYYY-MM)", c.Month)
		}
		month = d
	}
	month = month.StartOfMonth().AddMonths(-c.Prev)

	fmt.Println(render.Month(set, month, today, weekStart, h.ColorHex))
	return nil
}
