package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/community"
	"github.com/devcompass/devcompass/internal/ui/theme"
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Read and write posts in the community feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return communityListCmd.RunE(cmd, args)
	},
}

var communityListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the newest posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		posts := a.Community.ListPosts(cmd.Context())
		out := cmd.OutOrStdout()
		if len(posts) == 0 {
			fmt.Fprintln(out, "No posts yet. Be the first to share something!")
			return nil
		}

		now := time.Now()
		for _, p := range posts {
			fmt.Fprintf(out, "%s  %s\n", theme.Title.Render(p.Title), theme.Hint.Render(p.ID))
			meta := fmt.Sprintf("%s · %s", p.AuthorName, humanize.RelTime(p.CreatedAt, now, "ago", "from now"))
			if p.Type != community.Message {
				meta += fmt.Sprintf(" · %s · %s", p.Type, p.Difficulty)
			}
			meta += fmt.Sprintf(" · %d %s", p.CommentCount, plural(p.CommentCount, "reply", "replies"))
			fmt.Fprintln(out, theme.Subtitle.Render(meta))
			fmt.Fprintln(out, p.Body)
			fmt.Fprintln(out)
		}
		return nil
	},
}

var communityShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post and its replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.Community.GetPost(ctx, args[0])
		if err != nil {
			return err
		}
		comments, err := a.Community.ListComments(ctx, p.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(p.Title))
		fmt.Fprintln(out, theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s",
			p.AuthorName, p.Type, humanize.RelTime(p.CreatedAt, now, "ago", "from now"))))
		fmt.Fprintln(out)
		fmt.Fprintln(out, p.Body)

		if len(comments) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Subtitle.Render("Replies"))
			for _, c := range comments {
				fmt.Fprintf(out, "  %s (%s): %s\n", c.AuthorName,
					humanize.RelTime(c.CreatedAt, now, "ago", "from now"), c.Content)
			}
		}
		return nil
	},
}

var communityPostCmd = &cobra.Command{
	Use:   "post <title> <body...>",
	Short: "Publish a post (requires sign-in)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		difficulty, _ := cmd.Flags().GetString("difficulty")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Community.CreatePost(cmd.Context(), a.Sessions.Current().UID(), community.NewPost{
			Title:      args[0],
			Body:       strings.Join(args[1:], " "),
			Type:       community.PostType(typ),
			Difficulty: difficulty,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Posted %q (%s)\n", p.Title, p.ID)
		return nil
	},
}

var communityReplyCmd = &cobra.Command{
	Use:   "reply <post-id> <message...>",
	Short: "Reply to a post (requires sign-in)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Community.AddComment(cmd.Context(), a.Sessions.Current().UID(), args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reply posted.")
		return nil
	},
}

func init() {
	communityPostCmd.Flags().String("type", string(community.Message), "Post type: message, challenge or question")
	communityPostCmd.Flags().String("difficulty", "beginner", "Difficulty for challenges and questions")

	communityCmd.AddCommand(communityListCmd)
	communityCmd.AddCommand(communityShowCmd)
	communityCmd.AddCommand(communityPostCmd)
	communityCmd.AddCommand(communityReplyCmd)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
