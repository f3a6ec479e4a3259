package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitgrid/internal/backup"
	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the run
	warnOnly bool
	needsDB  bool
	run      func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Built-in habits", needsDB: true, run: checkBuiltInHabits},
	{name: "Entry schedule", needsDB: true, warnOnly: true, run: checkEntrySchedule},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	bg := context.Background()
	hasError := false
	dbReachable := true

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(bg, ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}

		if c.name == "Database reachable" && err != nil {
			dbReachable = false
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(bg); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return ctx.Store.Ping(bg)
}

func checkBuiltInHabits(bg context.Context, ctx *cli.Context) error {
	list, err := ctx.Service.ListHabits(bg, ctx.Owner)
	if err != nil {
		return err
	}
	have := make(map[string]bool)
	for _, h := range list {
		if h.IsSystemDefined {
			have[string(h.Variant)] = true
		}
	}

	var missing []string
	for _, def := range habits.SystemHabits() {
		if !have[def.Variant] {
			missing = append(missing, def.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("built-in habits missing for %q: %s, run 'habitgrid init'", ctx.Owner, strings.Join(missing, ", "))
	}
	return nil
}

// checkEntrySchedule reports entries left on days a habit is no longer due,
// which happens when a schedule is edited after completions were recorded.
func checkEntrySchedule(bg context.Context, ctx *cli.Context) error {
	habits, err := ctx.Service.ListHabits(bg, ctx.Owner)
	if err != nil {
		return err
	}

	offSchedule := 0
	for _, h := range habits {
		entries, err := ctx.Service.Entries(bg, h.ID, "", "")
		if err != nil {
			return err
		}
		for _, e := range entries {
			day, err := time.Parse(constants.DateFormat, e.Day)
			if err != nil {
				return fmt.Errorf("entry %s has malformed day %q", e.ID, e.Day)
			}
			if !h.IsDueOn(day) {
				offSchedule++
			}
		}
	}
	if offSchedule > 0 {
		return fmt.Errorf("%d entries fall on days their habit is no longer scheduled", offSchedule)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitgrid backup create'")
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	loc, err := ctx.Config.Location()
	if err != nil {
		return err
	}
	if time.Now().Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", time.Now().In(loc).Format(time.RFC3339))
	}
	return nil
}
