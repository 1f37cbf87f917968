package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your progress, streak and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		return runDashboard(cmd, width)
	},
}

func runDashboard(cmd *cobra.Command, width int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.Sessions.Current()
	p := s.Tracker.Load(cmd.Context())
	view := dashboard.Build(p, s.SignedIn())

	fmt.Fprintln(cmd.OutOrStdout(), view.Render(width, time.Now()))
	return nil
}

func init() {
	dashboardCmd.Flags().IntP("width", "w", dashboard.DefaultWidth, "Render width in columns")
}
