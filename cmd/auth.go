package cmd

import (
	"fmt"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var (
	authName     string
	authEmail    string
	authPassword string
	loginGuest   bool
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a local account and log in",
	Long: `Create an account on this machine and log in with it.

Accounts are stored locally in plain text. They only separate one person's
saved chats from another's; they are not a security boundary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.profiles.SignUp(authName, authEmail, authPassword)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are logged in.\n", profile.Name)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a local account, or as a guest",
	Long: `Log in with an account created by 'gujjar-gpt signup'.

Use --guest to chat without an account. Guest chats are kept for the
current command only and are never saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var profile *internal.UserProfile
		if loginGuest {
			profile, err = a.profiles.ContinueAsGuest()
		} else {
			profile, err = a.profiles.LogIn(authEmail, authPassword)
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", profile.Name)
		if profile.IsGuest() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render("Guest chats are not saved."))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and delete this profile's saved chats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.requireLogin()
		if err != nil {
			return err
		}
		if err := a.profiles.LogOut(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", profile.Name)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.requireLogin()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, titleStyle.Render(profile.Name))
		if profile.IsGuest() {
			_, _ = fmt.Fprintln(out, idStyle.Render("guest profile, chats are not saved"))
		} else {
			_, _ = fmt.Fprintf(out, "%s\n", dateStyle.Render(fmt.Sprintf("%d saved session(s)", len(a.sessions.List()))))
		}
		if profile.Avatar != "" {
			_, _ = fmt.Fprintln(out, idStyle.Render("custom avatar set"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)

	signupCmd.Flags().StringVar(&authName, "name", "", "Display name")
	signupCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&authPassword, "password", "", "Password")

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Password")
	loginCmd.Flags().BoolVar(&loginGuest, "guest", false, "Continue as a guest")
}
