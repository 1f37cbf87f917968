package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/pathgen"
	"github.com/devcompass/devcompass/internal/ui/theme"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Generate a personalized learning path",
	Long: "Generates a learning path for your skill level, goal and weekly time commitment.\n" +
		"Goals: web, python, javascript, fullstack or any topic.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		goal, _ := cmd.Flags().GetString("goal")
		commitment, _ := cmd.Flags().GetString("time")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(cmd.ErrOrStderr(), theme.Hint.Render("Generating your learning path..."))
		lp, err := a.GeneratePath(cmd.Context(), pathgen.Input{
			SkillLevel:     level,
			Goal:           goal,
			TimeCommitment: commitment,
		})
		if err != nil {
			return err
		}
		printPath(cmd.OutOrStdout(), lp)
		return nil
	},
}

func printPath(out io.Writer, lp *pathgen.LearningPath) {
	fmt.Fprintln(out, theme.Title.Render("Your Learning Path"))
	fmt.Fprintln(out, lp.Overview)
	fmt.Fprintln(out, theme.Subtitle.Render("Estimated duration: "+lp.Duration))

	for i, m := range lp.Milestones {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s\n", theme.Title.Render(fmt.Sprintf("%d. %s", i+1, m.Title)))
		if m.Description != "" {
			fmt.Fprintln(out, m.Description)
		}
		if len(m.KeyConcepts) > 0 {
			fmt.Fprintf(out, "Key concepts: %s\n", strings.Join(m.KeyConcepts, ", "))
		}
		if len(m.Resources) > 0 {
			fmt.Fprintln(out, "Resources:")
			for _, r := range m.Resources {
				fmt.Fprintf(out, "  - %s\n", r)
			}
		}
		if m.PracticeProject != "" {
			fmt.Fprintf(out, "Practice project: %s\n", m.PracticeProject)
		}
	}

	if len(lp.Tips) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Subtitle.Render("Tips"))
		for _, t := range lp.Tips {
			fmt.Fprintf(out, "  • %s\n", t)
		}
	}
}

func init() {
	pathCmd.Flags().StringP("level", "l", "beginner", "Skill level: beginner, intermediate or advanced")
	pathCmd.Flags().StringP("goal", "g", "", "Learning goal (web, python, javascript, fullstack or any topic)")
	pathCmd.Flags().StringP("time", "t", "casual", "Time commitment: casual, dedicated or intensive")
}
