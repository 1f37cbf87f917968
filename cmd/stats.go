package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show community statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Community.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Learners:             %s\n", humanize.Comma(int64(st.TotalUsers)))
		fmt.Fprintf(out, "Community challenges: %s\n", humanize.Comma(int64(st.TotalChallenges)))
		fmt.Fprintf(out, "Challenges completed: %s\n", humanize.Comma(int64(st.TotalCompletions)))
		return nil
	},
}
