package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change the profile name or avatar",
}

var profileSetNameCmd = &cobra.Command{
	Use:   "set-name <name>",
	Short: "Rename the profile; saved chats move with it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		current, err := a.requireLogin()
		if err != nil {
			return err
		}
		next := *current
		next.Name = strings.Join(args, " ")
		if err := a.profiles.UpdateProfile(next); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile renamed to %s\n", a.profiles.Current().Name)
		return nil
	},
}

var profileSetAvatarCmd = &cobra.Command{
	Use:   "set-avatar <image>",
	Short: "Use an image file as the profile avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.profiles.SetAvatar(args[0]); err != nil {
			return err
		}
		internal.LogDebug("Avatar set from %s", args[0])
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Avatar updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetNameCmd, profileSetAvatarCmd)
}
