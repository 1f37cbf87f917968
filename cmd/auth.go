package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/devcompass/devcompass/internal/ui/theme"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and move your guest progress into it",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		name, err := flagOrPrompt(cmd, in, "name", "Name: ")
		if err != nil {
			return err
		}
		email, err := flagOrPrompt(cmd, in, "email", "Email: ")
		if err != nil {
			return err
		}
		password, err := passwordFlagOrPrompt(cmd, in)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Sessions.SignUp(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as %s.\n",
			theme.Title.Render(s.Identity.Name), s.Identity.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := flagOrPrompt(cmd, in, "email", "Email: ")
		if err != nil {
			return err
		}
		password, err := passwordFlagOrPrompt(cmd, in)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Sessions.SignIn(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", theme.Title.Render(s.Identity.Name))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and continue as a guest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Sessions.Current().SignedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "You are not signed in.")
			return nil
		}
		if _, err := a.Sessions.SignOut(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Progress is now saved on this device.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		s := a.Sessions.Current()
		if !s.SignedIn() {
			fmt.Fprintln(out, "Guest (progress is saved on this device)")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>\n", s.Identity.Name, s.Identity.Email)
		fmt.Fprintf(out, "uid: %s\n", s.Identity.UID)
		return nil
	},
}

func flagOrPrompt(cmd *cobra.Command, in *bufio.Reader, flag, prompt string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", flag, err)
	}
	return strings.TrimSpace(line), nil
}

// passwordFlagOrPrompt reads the password without echo when stdin is a
// terminal.
func passwordFlagOrPrompt(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if v, _ := cmd.Flags().GetString("password"); v != "" {
		return v, nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return flagOrPrompt(cmd, in, "password", "Password: ")
}

func init() {
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("email", "", "Email address")
	signupCmd.Flags().String("password", "", "Password (prompted when omitted)")

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
}
