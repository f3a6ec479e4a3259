package habits

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/constants"
	habitsvc "github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit and its stats."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit and its entries."`
	Mark      HabitMarkCmd      `cmd:"" help:"Mark a habit as done for a day."`
	Note      HabitNoteCmd      `cmd:"" help:"Write a learning log note for a day."`
	Rate      HabitRateCmd      `cmd:"" help:"Rate a day from 0 to 10."`
	EditEntry HabitEditEntryCmd `cmd:"" name:"edit-entry" help:"Edit the entry of a habit for a day."`
	Stats     HabitStatsCmd     `cmd:"" help:"Show completion stats for a habit."`
	Week      HabitWeekCmd      `cmd:"" help:"Show the weekly grid for a habit."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Frequency   string `short:"f" help:"Frequency label (daily|weekly|monthly)." default:"daily"`
	Days        string `short:"d" help:"Comma-separated weekdays the habit is due on." default:"monday,tuesday,wednesday,thursday,friday,saturday,sunday"`
	Color       string `short:"c" help:"Display color (#RRGGBB)."`
	Description string `help:"Short description."`
	Variant     string `help:"Entry variant (standard|learning-log|day-rating)." default:"standard"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Service.CreateHabit(context.Background(), ctx.Owner, models.HabitInput{
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Frequency:   c.Frequency,
		DaysOfWeek:  cli.ParseDays(c.Days),
		Variant:     c.Variant,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", habit.Name, cli.FormatDays(habit.DaysOfWeek))
	fmt.Printf("  id: %s\n", habit.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Service.ListHabits(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		marker := ""
		if habit.IsSystemDefined {
			marker = " [BUILT-IN]"
		}
		fmt.Printf("%-36s  %-24s %-12s %s%s\n", habit.ID, habit.Name, habit.Variant, cli.FormatDays(habit.DaysOfWeek), marker)
	}
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	stats, err := ctx.Service.GetHabitStats(bg, habit.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", habit.Name)
	if habit.Description != "" {
		fmt.Printf("  %s\n", habit.Description)
	}
	fmt.Printf("  id:        %s\n", habit.ID)
	fmt.Printf("  frequency: %s\n", habit.Frequency)
	fmt.Printf("  days:      %s\n", cli.FormatDays(habit.DaysOfWeek))
	fmt.Printf("  variant:   %s\n", habit.Variant)
	if habit.Color != "" {
		fmt.Printf("  color:     %s\n", habit.Color)
	}
	fmt.Println()
	printStats(stats, ctx.Service.StreakPolicy())
	return nil
}

type HabitEditCmd struct {
	Habit       string `arg:"" help:"Habit name or id."`
	Name        string `help:"New name."`
	Frequency   string `short:"f" help:"New frequency label."`
	Days        string `short:"d" help:"New comma-separated weekdays."`
	Color       string `short:"c" help:"New color (#RRGGBB)."`
	Description string `help:"New description."`
	Variant     string `help:"New entry variant."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	input := habitsvc.InputFromHabit(habit)
	if c.Name != "" {
		input.Name = c.Name
	}
	if c.Frequency != "" {
		input.Frequency = c.Frequency
	}
	if c.Days != "" {
		input.DaysOfWeek = cli.ParseDays(c.Days)
	}
	if c.Color != "" {
		input.Color = c.Color
	}
	if c.Description != "" {
		input.Description = c.Description
	}
	if c.Variant != "" {
		input.Variant = c.Variant
	}

	updated, err := ctx.Service.UpdateHabit(bg, habit.ID, input)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s (%s)\n", updated.Name, cli.FormatDays(updated.DaysOfWeek))
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	entries, err := ctx.Service.CountEntries(bg, habit.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Delete %q and its %d entries? [y/N]: ", habit.Name, entries)
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Service.DeleteHabit(bg, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s (%d entries)\n", habit.Name, entries)
	return nil
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
	Undo  bool   `help:"Mark the day as not done."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	entry, err := ctx.Service.MarkDay(bg, habit.ID, dayOrToday(ctx, c.Date), !c.Undo)
	if err != nil {
		return err
	}

	if entry.Completed {
		fmt.Printf("Marked habit %q for %s\n", habit.Name, entry.Day)
	} else {
		fmt.Printf("Unmarked habit %q for %s\n", habit.Name, entry.Day)
	}
	return nil
}

type HabitNoteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Text  string `arg:"" help:"Note text."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitNoteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	note := c.Text
	entry, err := ctx.Service.SaveEntry(bg, models.EntryInput{
		HabitID: habit.ID,
		Date:    dayOrToday(ctx, c.Date),
		Note:    &note,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Saved note for %q on %s\n", habit.Name, entry.Day)
	return nil
}

type HabitRateCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Rating int    `arg:"" help:"Rating from 0 to 10."`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitRateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}

	rating := c.Rating
	entry, err := ctx.Service.SaveEntry(bg, models.EntryInput{
		HabitID: habit.ID,
		Date:    dayOrToday(ctx, c.Date),
		Rating:  &rating,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Rated %s %d/%d\n", entry.Day, *entry.Rating, constants.MaxRating)
	return nil
}

type HabitEditEntryCmd struct {
	Habit       string `arg:"" help:"Habit name or id."`
	Date        string `help:"Date in YYYY-MM-DD format (default: today)."`
	Completed   string `help:"Set completion (yes|no)."`
	Note        string `help:"Replace the note."`
	Rating      string `help:"Replace the rating (0-10)."`
	ClearRating bool   `help:"Remove the rating."`
}

func (c *HabitEditEntryCmd) patch() (models.EntryPatch, error) {
	var patch models.EntryPatch
	switch c.Completed {
	case "yes":
		v := true
		patch.Completed = &v
	case "no":
		v := false
		patch.Completed = &v
	case "":
	default:
		return patch, fmt.Errorf("invalid --completed value %q (expected yes or no)", c.Completed)
	}
	if c.Note != "" {
		note := c.Note
		patch.Note = &note
	}
	if c.Rating != "" {
		r, err := strconv.Atoi(c.Rating)
		if err != nil {
			return patch, fmt.Errorf("invalid rating %q: %w", c.Rating, err)
		}
		patch.Rating = &r
	}
	patch.ClearRating = c.ClearRating
	return patch, nil
}

func (c *HabitEditEntryCmd) Run(ctx *cli.Context) error {
	patch, err := c.patch()
	if err != nil {
		return err
	}

	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	existing, err := ctx.Service.EntryForDay(bg, habit.ID, dayOrToday(ctx, c.Date))
	if err != nil {
		return err
	}

	entry, err := ctx.Service.UpdateCompletion(bg, existing.ID, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated entry for %q on %s (%s)\n", habit.Name, entry.Day, describeEntry(entry))
	return nil
}

type HabitStatsCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	stats, err := ctx.Service.GetHabitStats(bg, habit.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", habit.Name)
	printStats(stats, ctx.Service.StreakPolicy())
	return nil
}

type HabitWeekCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Any day in the week to show (default: today)."`
}

func (c *HabitWeekCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habit, err := ctx.ResolveHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	view, err := ctx.Service.WeekView(bg, habit.ID, c.Date)
	if err != nil {
		return err
	}

	fmt.Printf("%s: week of %s\n\n", habit.Name, view.Start)
	for _, day := range view.Days {
		fmt.Printf("  %s %s  %s\n", shortDay(day.Weekday), day.Day, cell(day))
	}
	return nil
}

func dayOrToday(ctx *cli.Context, date string) string {
	if strings.TrimSpace(date) != "" {
		return date
	}
	return ctx.Service.Today().Format(constants.DateFormat)
}

func shortDay(w models.Weekday) string {
	name := string(w)
	if len(name) < 3 {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:3]
}

func cell(day models.DayView) string {
	switch {
	case !day.Scheduled:
		return " · "
	case day.Future:
		return "   "
	case !day.HasEntry:
		return "[ ]"
	}
	out := "[ ]"
	if day.Completed {
		out = "[x]"
	}
	if day.Rating != nil {
		out += fmt.Sprintf(" %d/%d", *day.Rating, constants.MaxRating)
	}
	if day.Note != nil {
		out += " " + *day.Note
	}
	return out
}

func describeEntry(e models.HabitEntry) string {
	parts := []string{"not done"}
	if e.Completed {
		parts[0] = "done"
	}
	if e.Rating != nil {
		parts = append(parts, fmt.Sprintf("rating %d", *e.Rating))
	}
	if e.Note != nil {
		parts = append(parts, "note")
	}
	return strings.Join(parts, ", ")
}

func printStats(stats models.HabitStats, policy models.StreakPolicy) {
	fmt.Printf("  entries:         %d (%d completed)\n", stats.TotalEntries, stats.CompletedEntries)
	fmt.Printf("  completion rate: %.2f%%\n", stats.CompletionRate)
	fmt.Printf("  current streak:  %d\n", stats.CurrentStreak)
	fmt.Printf("  longest streak:  %d\n", stats.LongestStreak)
	if stats.LastCompletedDay != "" {
		fmt.Printf("  last completed:  %s\n", stats.LastCompletedDay)
	}
	fmt.Printf("  streak policy:   %s\n", policy)
}
