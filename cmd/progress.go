package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress [track]",
	Short: "Show completed challenges per track",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		tracks := progress.AllTracks()
		if len(args) == 1 {
			t, err := progress.ParseTrack(args[0])
			if err != nil {
				return err
			}
			tracks = []progress.Track{t}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.Sessions.Current()
		p := s.Tracker.Load(cmd.Context())
		out := cmd.OutOrStdout()

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Fprintf(out, "%s (%s progress)\n", p.Name, s.Store().Kind())
		fmt.Fprintf(out, "Streak: %d\n\n", p.Streak)
		for _, t := range tracks {
			fmt.Fprintf(out, "%-10s  %3d%%  %d/%d\n", t.Label(), p.Percent[t], p.CompletedCount(t), t.Total())
			if ids := p.Completed[t]; len(ids) > 0 {
				fmt.Fprintf(out, "            %s\n", strings.Join(ids, ", "))
			}
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print the stored record as JSON")
}
