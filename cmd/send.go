package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var (
	sendSession string
	sendAttach  string
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single message and print the reply.

Without --session a new session is started. Prefix the message with /imagine
to generate an image; save it afterwards with 'gujjar-gpt save-image'.`,
	Example: `  gujjar-gpt send "Suggest a weekend trip from Jaipur"
  gujjar-gpt send --session 1700000002000 "Make it a three day trip"
  gujjar-gpt send --attach fort.jpg "Which fort is this?"
  gujjar-gpt send "/imagine a camel caravan at sunset"`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.requireLogin(); err != nil {
			return err
		}

		attachments, err := loadAttachment(sendAttach)
		if err != nil {
			return err
		}

		ctx := context.Background()
		ctrl, err := a.controller(ctx)
		if err != nil {
			return err
		}
		if sendSession != "" {
			if _, err := a.findSession(sendSession); err != nil {
				return err
			}
			if err := ctrl.SelectChat(ctx, sendSession); err != nil {
				internal.LogDebug("Conversation not restored: %v", err)
			}
		}

		input := strings.Join(args, " ")
		mode, _ := internal.ParseMode(input)
		var result *internal.SendResult
		err = internal.ShowThinking(ctx, thinkingMessage(mode), func() error {
			var sendErr error
			result, sendErr = ctrl.Send(ctx, input, attachments)
			return sendErr
		})
		if err != nil {
			return err
		}
		if result.Err != nil {
			return result.Err
		}

		newMessageRenderer(cmd.OutOrStdout()).Message(result.SessionID, *result.Reply)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), idStyle.Render("session "+result.SessionID))
		return nil
	},
}

// loadAttachment reads the optional --attach image. One attachment per message.
func loadAttachment(path string) ([]internal.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	a, err := internal.LoadAttachment(path)
	if err != nil {
		return nil, err
	}
	return []internal.Attachment{a}, nil
}

func thinkingMessage(mode internal.Mode) string {
	if mode == internal.ModeImage {
		return "Generating image..."
	}
	return "Thinking..."
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendSession, "session", "s", "", "Continue a saved session")
	sendCmd.Flags().StringVarP(&sendAttach, "attach", "a", "", "Attach an image")
}
