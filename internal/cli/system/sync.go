package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/notifier"
)

// SyncCmd rewrites the widget snapshot from the database and asks a running
// widget host to reload.
type SyncCmd struct {
	Timeout time.Duration `help:"How long to wait for the shared container lock." default:"5s"`
}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	if ctx.Publisher == nil {
		return fmt.Errorf("shared container %s is unavailable", ctx.Config.GroupDir)
	}

	rows, err := ctx.Publisher.Project()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if err := ctx.Publisher.Publish(pubCtx); err != nil {
		return fmt.Errorf("failed to publish widget snapshot: %w", err)
	}
	fmt.Printf("✓ Published %d habit(s) to %s\n", len(rows), ctx.Config.GroupDir)

	if _, err := notifier.New(ctx.Config.LockfilePath()).Probe(); errors.Is(err, notifier.ErrHostNotRunning) {
		fmt.Println("ℹ Widget host is not running; it will pick up the snapshot when started")
	} else if err != nil {
		fmt.Printf("⚠ Widget host lockfile is unreadable: %v\n", err)
	} else {
		fmt.Println("✓ Widget host notified")
	}
	return nil
}
