package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var chatSession string

const chatHelp = `Start an interactive chat with GujjarGPT.

Type a message and press Enter. Press Ctrl-C while a reply is pending to stop
waiting for it; press Ctrl-C again (or type /quit) to leave.

Commands:
  /new            start a new chat
  /list           list saved chats
  /select <id>    switch to a saved chat
  /delete <id>    delete a saved chat
  /attach <file>  attach an image to the next message (replaces a pending one)
  /imagine <...>  generate an image
  /help           show this help
  /quit           leave

On an empty chat, type a number to send one of the suggested prompts.`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long:  chatHelp,
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

		ctx := context.Background()
		ctrl, err := a.controller(ctx)
		if err != nil {
			return err
		}
		if chatSession != "" {
			if _, err := a.findSession(chatSession); err != nil {
				return err
			}
			_ = ctrl.SelectChat(ctx, chatSession)
		}

		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)

		r := &repl{
			ctrl:       ctrl,
			in:         cmd.InOrStdin(),
			out:        cmd.OutOrStdout(),
			render:     newMessageRenderer(cmd.OutOrStdout()),
			interrupts: interrupts,
		}
		_, _ = fmt.Fprintln(r.out, headerStyle.Render(fmt.Sprintf("💬 GujjarGPT · %s", profile.Name)))
		if profile.IsGuest() {
			_, _ = fmt.Fprintln(r.out, idStyle.Render("Guest chats are not saved."))
		}
		if banner := ctrl.LastError(); banner != "" {
			_, _ = fmt.Fprintln(r.out, errorMessageStyle.Render(banner))
		}
		return r.run(ctx)
	},
}

// repl reads lines and runs them through the controller, one send at a time
type repl struct {
	ctrl        *internal.Controller
	in          io.Reader
	out         io.Writer
	render      *messageRenderer
	interrupts  <-chan os.Signal
	attachments []internal.Attachment
}

func (r *repl) run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(r.in, done)

	r.showActive()
	for {
		r.prompt()
		select {
		case <-r.interrupts:
			_, _ = fmt.Fprintln(r.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := r.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				_, _ = fmt.Fprintln(r.out, errorMessageStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
		}
	}
}

// readLines feeds lines from in until EOF or until done is closed.
// A read already blocked on in stays blocked until in yields.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (r *repl) prompt() {
	marker := "› "
	if len(r.attachments) > 0 {
		marker = "📎 › "
	}
	_, _ = fmt.Fprint(r.out, userMessageStyle.Render(marker))
}

// handle runs one input line. It reports quit for /quit.
func (r *repl) handle(ctx context.Context, line string) (quit bool, err error) {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "":
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/help":
		_, _ = fmt.Fprintln(r.out, chatHelp)
		return false, nil
	case "/new":
		r.attachments = nil
		err := r.ctrl.NewChat(ctx)
		r.showActive()
		return false, err
	case "/list":
		printSessionTable(r.out, r.ctrl.Sessions().List(), r.ctrl.Sessions().ActiveID())
		return false, nil
	case "/select":
		if _, ok := r.ctrl.Sessions().Get(arg); !ok {
			return false, fmt.Errorf("session not found: %s", arg)
		}
		err := r.ctrl.SelectChat(ctx, arg)
		r.showActive()
		return false, err
	case "/delete":
		if _, ok := r.ctrl.Sessions().Get(arg); !ok {
			return false, fmt.Errorf("session not found: %s", arg)
		}
		if err := r.ctrl.DeleteChat(ctx, arg); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(r.out, idStyle.Render("Deleted "+arg))
		return false, nil
	case "/attach":
		a, err := internal.LoadAttachment(arg)
		if err != nil {
			return false, err
		}
		r.attachments = []internal.Attachment{a}
		return false, nil
	}

	if _, active := r.ctrl.Sessions().Active(); !active {
		if n, err := strconv.Atoi(line); err == nil {
			if prompt, ok := internal.SuggestedPrompt(n); ok {
				line = prompt
				_, _ = fmt.Fprintln(r.out, idStyle.Render(prompt))
			}
		}
	}
	return false, r.send(ctx, line)
}

// send runs one cycle. Ctrl-C while waiting stops the cycle and returns to the prompt.
func (r *repl) send(ctx context.Context, line string) error {
	mode, _ := internal.ParseMode(line)
	attachments := r.attachments

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.interrupts:
			r.ctrl.Stop()
			cancel()
		case <-waitCtx.Done():
		}
	}()

	var result *internal.SendResult
	err := internal.ShowThinking(waitCtx, thinkingMessage(mode), func() error {
		var sendErr error
		result, sendErr = r.ctrl.Send(ctx, line, attachments)
		return sendErr
	})
	switch {
	case errors.Is(err, context.Canceled):
		r.attachments = nil
		_, _ = fmt.Fprintln(r.out, idStyle.Render("Stopped."))
		return nil
	case errors.Is(err, internal.ErrEmptyInput):
		return nil
	case err != nil:
		return err
	}

	r.attachments = nil
	if result.Cancelled || result.Reply == nil {
		return nil
	}
	r.render.Message(result.SessionID, *result.Reply)
	return nil
}

// showActive prints the active chat, or the suggested prompts when none is active
func (r *repl) showActive() {
	session, ok := r.ctrl.Sessions().Active()
	if !ok {
		printSuggestions(r.out)
		return
	}
	_, _ = fmt.Fprintln(r.out, titleStyle.Render(session.Title))
	_, _ = fmt.Fprintln(r.out)
	for _, msg := range session.Messages {
		r.render.Message(session.ID, msg)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Resume a saved session")
}
