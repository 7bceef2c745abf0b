package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/constants"
	apperrors "github.com/julianstephens/peakstreak/internal/errors"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/shared"
	"github.com/julianstephens/peakstreak/internal/widget"
)

// Context is passed to every widget command.
type Context struct {
	Config   *config.Config
	Provider *widget.Provider
}

type RenderCmd struct {
	JSON        bool `help:"Print the timeline as JSON instead of drawing it."`
	Placeholder bool `help:"Render the gallery placeholder."`
}

func (c *RenderCmd) Run(ctx *Context) error {
	entry := ctx.Provider.EntryAt(ctx.Provider.Now())
	if c.Placeholder {
		entry = ctx.Provider.Placeholder()
	}

	if c.JSON {
		timeline := ctx.Provider.Timeline(ctx.Provider.Now())
		if c.Placeholder {
			timeline.Entries = []widget.Entry{entry}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(timeline)
	}

	fmt.Println(widget.Render(entry.View))
	return nil
}

type ServeCmd struct {
	Quiet bool `help:"Do not draw the widget on each refresh."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onRender := func(e widget.Entry) {
		if c.Quiet {
			return
		}
		// Clear the screen and redraw in place.
		fmt.Print("\033[H\033[2J")
		fmt.Println(widget.Render(e.View))
	}

	host := widget.NewHost(ctx.Provider, ctx.Config.GroupDir, onRender)
	logger.Info("Widget host starting", "dir", ctx.Config.GroupDir, "habit", ctx.Config.Widget.HabitID)
	return host.Serve(sigCtx)
}

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config.yaml." type:"path" default:"~/.config/peakstreak/config.yaml"`
	Debug   bool   `help:"Log debug output to stderr."`
	Habit   string `help:"Habit ID to show. Defaults to the config file, then the first habit."`
	Family  string `help:"Widget size: small or medium. Defaults to the config file."`

	Render RenderCmd `cmd:"" help:"Draw the widget once and exit." default:"1"`
	Serve  ServeCmd  `cmd:"" help:"Keep the widget on screen and redraw on reload signals."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.WidgetAppName),
		kong.Description("Home-screen style widget showing one peakstreak habit"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: config.Dir(), Name: constants.WidgetAppName}); err != nil {
		fmt.Printf("Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Logging to file", "path", logger.Path(config.Dir(), constants.WidgetAppName))

	cfg, err := config.Load(CLI.Config)
	apperrors.Fatal(err)
	if CLI.Habit != "" {
		cfg.Widget.HabitID = CLI.Habit
	}
	if CLI.Family != "" {
		cfg.Widget.Family = CLI.Family
	}
	apperrors.Fatal(cfg.Validate())

	suite, err := shared.Open(cfg.GroupDir)
	apperrors.Fatal(err)

	provider := widget.NewProvider(suite, cfg.Widget, widget.WithCalendar(cfg.Calendar()))
	apperrors.Fatal(ctx.Run(&Context{Config: cfg, Provider: provider}))
}
