package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/krishichetan/kchetan/internal/controller"
	"github.com/krishichetan/kchetan/internal/tui"
)

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboards in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, c.opts, c.log.Log)
			if err != nil {
				return err
			}
			defer a.Close()

			changes, unsubscribe := a.screen.Subscribe()
			defer unsubscribe()

			if err := a.ctl.Initialize(ctx); err != nil {
				if errors.Is(err, controller.ErrUnauthenticated) {
					return fmt.Errorf("not logged in: run kchetan login first")
				}
				return err
			}
			session, _ := a.ctl.Session()

			model := tui.NewModel(ctx, a.ctl, a.screen, changes, session)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
