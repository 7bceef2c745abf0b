package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/cli/backups"
	"github.com/julianstephens/peakstreak/internal/cli/habits"
	"github.com/julianstephens/peakstreak/internal/cli/settings"
	"github.com/julianstephens/peakstreak/internal/cli/system"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/constants"
	apperrors "github.com/julianstephens/peakstreak/internal/errors"
	"github.com/julianstephens/peakstreak/internal/keyring"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/storage/postgres"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config.yaml." type:"path" default:"~/.config/peakstreak/config.yaml"`
	DB      string `name:"db" help:"Database path, PostgreSQL connection string, or 'keyring'. Overrides the config file. PostgreSQL credentials must NOT be embedded; use PGPASSWORD, .pgpass, or the OS keyring."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd    `cmd:"" help:"Initialize peakstreak storage."`
	Tui      system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Sync     system.SyncCmd    `cmd:"" help:"Publish the widget snapshot now."`
	Keyring  system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and daily completions."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
}

// openStore picks the backend from the database value. Connection strings
// read from the keyring may carry a password; ones given on the command
// line or in the config file may not.
func openStore(db string) (storage.Provider, error) {
	if db == config.KeyringDatabase {
		connStr, err := keyring.ConnectionString()
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no connection string in keyring. Use 'peakstreak keyring set' to store one")
		}
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if config.IsPostgres(db) {
		if err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed. Use PGPASSWORD, .pgpass, or 'peakstreak keyring set' with --db keyring")
			}
			return nil, err
		}
		return postgres.New(db), nil
	}
	return sqlite.NewStore(db), nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with streaks and a home-screen widget"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: config.Dir(), Name: constants.AppName}); err != nil {
		fmt.Printf("Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Logging to file", "path", logger.Path(config.Dir(), constants.AppName))

	cfg, err := config.Load(CLI.Config)
	apperrors.Fatal(err)
	if CLI.DB != "" {
		cfg.Database = CLI.DB
		if !config.IsPostgres(cfg.Database) && cfg.Database != config.KeyringDatabase {
			cfg.Database = config.ExpandPath(cfg.Database)
		}
	}

	appCtx := &cli.Context{Config: cfg}

	// Keyring commands never touch the database.
	command := ctx.Command()
	if !isKeyringCommand(command) {
		store, err := openStore(cfg.Database)
		apperrors.Fatal(err)
		appCtx.Store = store
		defer store.Close()

		switch {
		case isCommand(command, "init"):
			// Init creates the database and wires the context itself.
		case isCommand(command, "doctor"):
			// Doctor reports an unreachable database instead of exiting.
			if err := appCtx.Open(); err != nil {
				logger.Debug("Doctor running without an open database", "error", err)
			}
		default:
			apperrors.Fatal(appCtx.Open())
			if cfg.PublishOnStart && !isCommand(command, "sync") {
				appCtx.Publish()
			}
		}
	}

	logger.Debug("Running command", "command", command, "database", storeLabel(appCtx.Store))
	apperrors.Fatal(ctx.Run(appCtx))
}

func isCommand(command, name string) bool {
	return command == name || strings.HasPrefix(command, name+" ")
}

func isKeyringCommand(command string) bool {
	return isCommand(command, "keyring")
}

func storeLabel(store storage.Provider) string {
	if store == nil {
		return "none"
	}
	if path := store.GetConfigPath(); path != "" {
		return path
	}
	return store.Backend()
}
