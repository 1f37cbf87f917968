package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/challenges"
	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/ui/theme"
)

var challengeCmd = &cobra.Command{
	Use:     "challenge",
	Aliases: []string{"challenges"},
	Short:   "Browse and solve coding challenges",
}

var challengeListCmd = &cobra.Command{
	Use:   "list [track]",
	Short: "List challenges and whether you completed them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		p := a.Sessions.Current().Tracker.Load(cmd.Context())
		out := cmd.OutOrStdout()

		for i, t := range tracks {
			list, err := challenges.List(t)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s  %d/%d completed\n", theme.Title.Render(t.Label()), p.CompletedCount(t), t.Total())
			for _, c := range list {
				mark := " "
				if p.HasCompleted(t, c.ID) {
					mark = theme.Passed.Render("✓")
				}
				fmt.Fprintf(out, "  %s %-20s %-13s %s\n", mark, c.ID, c.Level, c.Title)
			}
		}
		return nil
	},
}

var challengeShowCmd = &cobra.Command{
	Use:   "show <track> <id>",
	Short: "Show a challenge's question and starting code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChallenge(args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(c.Title))
		fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("%s · %s", c.Track.Label(), c.Level)))
		fmt.Fprintln(out)
		fmt.Fprintln(out, c.Description)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Challenge:", c.Question)
		if c.StartingCode != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Starting code:")
			fmt.Fprint(out, c.StartingCode)
		}
		return nil
	},
}

var challengeRunCmd = &cobra.Command{
	Use:   "run <track> <id> [file]",
	Short: "Run your solution and record the completion when it passes",
	Long:  "Runs the source in file (or stdin when file is omitted or \"-\") on the code execution service.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupChallenge(args[0], args[1])
		if err != nil {
			return err
		}

		file := "-"
		if len(args) == 3 {
			file = args[2]
		}
		source, err := readSource(cmd, file)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.Challenges()
		if err != nil {
			return err
		}
		tracker := a.Sessions.Current().Tracker

		outcome, err := svc.Attempt(cmd.Context(), tracker, c.Track, c.ID, source)
		if err != nil {
			return fmt.Errorf("run challenge: %w", err)
		}

		out := cmd.OutOrStdout()
		if outcome.Error != "" {
			fmt.Fprintln(out, theme.Failed.Render("Error:"), outcome.Error)
			return nil
		}
		fmt.Fprintln(out, "Output:")
		fmt.Fprintln(out, outcome.Output)
		if !outcome.Passed {
			fmt.Fprintln(out, theme.Failed.Render("Not quite. Check the question and try again."))
			return nil
		}
		fmt.Fprintln(out, theme.Passed.Render("Challenge completed!"))
		if p := outcome.Progress; p != nil {
			fmt.Fprintf(out, "%s progress: %d%% (%d/%d)\n",
				c.Track.Label(), p.Percent[c.Track], p.CompletedCount(c.Track), c.Track.Total())
		}
		return nil
	},
}

func lookupChallenge(trackArg, id string) (*challenges.Challenge, error) {
	t, err := progress.ParseTrack(trackArg)
	if err != nil {
		return nil, err
	}
	return challenges.Get(t, id)
}

func readSource(cmd *cobra.Command, file string) (string, error) {
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}

func init() {
	challengeCmd.AddCommand(challengeListCmd)
	challengeCmd.AddCommand(challengeShowCmd)
	challengeCmd.AddCommand(challengeRunCmd)
}
