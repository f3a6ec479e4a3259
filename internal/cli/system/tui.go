package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup(bg)

	if _, err := ctx.Service.EnsureDefaultHabits(bg, ctx.Owner); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Service, ctx.Owner), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
