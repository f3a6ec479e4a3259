package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/cli/backups"
	"github.com/julianstephens/habitgrid/internal/cli/habits"
	"github.com/julianstephens/habitgrid/internal/cli/system"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (default: $HABITGRID_CONFIG or ~/.config/habitgrid/habitgrid.yaml)." type:"string"`
	DB      string `name:"db" help:"SQLite path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use HABITGRID_DB_CONNECTION, .pgpass, or the OS keyring instead." type:"string"`

	Init    system.InitCmd    `cmd:"" help:"Initialize habitgrid storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the HTTP API."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive weekly grid." default:"1"`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and habit tracking."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

// commands that manage storage themselves and must run before it loads
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly habit tracker with streaks, learning logs and day ratings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	command := strings.Fields(ctx.Command())[0]

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.Path()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:  cfg.Log.Debug,
		Dir:    config.ExpandHome(cfg.Log.Dir),
		Stderr: command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx, err := cli.NewContext(cfg, CLI.DB)
	if err != nil {
		errors.Fatal(err)
	}
	defer appCtx.Store.Close()

	if !skipLoad[command] {
		if err := appCtx.Store.Load(context.Background()); err != nil {
			appCtx.Store.Close()
			errors.Fatalf("failed to open database: %v (run '%s init' first)", err, constants.AppName)
		}
	}

	logger.Debug("running command", "command", ctx.Command(), "db", appCtx.Store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		errors.Fatal(err)
	}
}
