package cmd

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var imageOutDir string

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

var saveImageCmd = &cobra.Command{
	Use:   "save-image <session-id> <message-id>",
	Short: "Save a generated image to disk",
	Long: `Decode the image of a /imagine reply and write it to a file named
gujjar-gpt-image-<timestamp>.<ext>. Defaults to the images directory under storage.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(args[0])
		if err != nil {
			return err
		}
		msg, ok := session.Find(args[1])
		if !ok {
			return fmt.Errorf("message not found: %s", args[1])
		}
		if msg.ImageURL == "" {
			return fmt.Errorf("message %s has no image", args[1])
		}

		dir := imageOutDir
		if dir == "" {
			dir = a.paths.ImagesDir
		}
		path, err := internal.SaveImage(msg.ImageURL, dir, time.Now())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <session-id> [message-id]",
	Short: "Copy a message's text to the clipboard",
	Long:  `Copy the text of a message to the system clipboard. Defaults to the last reply of the session.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(args[0])
		if err != nil {
			return err
		}

		var msg internal.ChatMessage
		if len(args) == 2 {
			found, ok := session.Find(args[1])
			if !ok {
				return fmt.Errorf("message not found: %s", args[1])
			}
			msg = found
		} else {
			found, ok := lastReply(session)
			if !ok {
				return fmt.Errorf("session %s has no replies", session.ID)
			}
			msg = found
		}

		if err := clipboardWrite(msg.Text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Copied to clipboard")
		return nil
	},
}

func lastReply(session internal.ChatSession) (internal.ChatMessage, bool) {
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if m := session.Messages[i]; m.Role == internal.RoleModel {
			return m, true
		}
	}
	return internal.ChatMessage{}, false
}

func init() {
	rootCmd.AddCommand(saveImageCmd, copyCmd)
	saveImageCmd.Flags().StringVarP(&imageOutDir, "out", "o", "", "Output directory")
}
