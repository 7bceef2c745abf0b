package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone     *string `help:"IANA timezone for day boundaries, or 'Local'."`
	WeekStart    *string `help:"First day of the week in grids (sunday, monday, ...)."`
	DefaultIcon  *string `help:"Symbol name for new habits."`
	DefaultColor *string `help:"Hex color or preset name for new habits."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:      %s\n", settings.Timezone)
		fmt.Printf("  Week Start:    %s\n", settings.WeekStart)
		fmt.Printf("  Default Icon:  %s\n", settings.DefaultIcon)
		fmt.Printf("  Default Color: %s\n", settings.DefaultColor)
		if ctx.Config != nil && (ctx.Config.Timezone != "" || ctx.Config.WeekStart != "") {
			fmt.Println("\nOverridden by config file:")
			if ctx.Config.Timezone != "" {
				fmt.Printf("  Timezone:      %s\n", ctx.Config.Timezone)
			}
			if ctx.Config.WeekStart != "" {
				fmt.Printf("  Week Start:    %s\n", ctx.Config.WeekStart)
			}
		}
		return nil
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*c.Timezone)
		updated = true
	}
	if c.WeekStart != nil {
		wd, err := calendar.ParseWeekday(*c.WeekStart)
		if err != nil {
			return err
		}
		settings.WeekStart = strings.ToLower(wd.String())
		updated = true
	}
	if c.DefaultIcon != nil {
		settings.DefaultIcon = strings.TrimSpace(*c.DefaultIcon)
		updated = true
	}
	if c.DefaultColor != nil {
		if !color.Valid(*c.DefaultColor) {
			return fmt.Errorf("invalid color: %s (expected #RRGGBB or a preset name)", *c.DefaultColor)
		}
		settings.DefaultColor = color.Normalize(*c.DefaultColor)
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := validation.Struct(settings); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")

	// Day boundaries may have moved, so today's snapshot is rebuilt.
	if c.Timezone != nil || c.WeekStart != nil {
		if err := ctx.Wire(); err != nil {
			return err
		}
		ctx.Publish()
	}
	return nil
}
