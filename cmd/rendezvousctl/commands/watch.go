package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rendezvous-relay/rendezvous/internal/dashboard"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live-poll the admin surface and render a session table",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			model := dashboard.New(func() ([]dashboard.Session, error) {
				sessions, err := fetchSessions()
				if err != nil {
					return nil, err
				}
				return toDashboardSessions(sessions), nil
			})

			if _, err := tea.NewProgram(model).Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}
}
