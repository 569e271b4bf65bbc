package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iksnae/gujjar-gpt/internal"
)

// 1x1 transparent PNG
const mockImage = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// Mock is an offline Gateway. It echoes chat turns and returns a fixed image.
// Err, when set, fails every call; Delay simulates latency.
type Mock struct {
	mu         sync.Mutex
	Err        error
	Delay      time.Duration
	chatCalls  int
	imageCalls int
	prompts    []string
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) NewContext(ctx context.Context, history []internal.ChatMessage) (*internal.Conversation, error) {
	return internal.NewConversation(history), nil
}

func (m *Mock) ExchangeTurn(ctx context.Context, conv *internal.Conversation, text string, attachments []internal.Attachment) (*internal.TurnReply, error) {
	m.mu.Lock()
	m.chatCalls++
	err, delay := m.Err, m.Delay
	m.mu.Unlock()

	if waitErr := m.wait(ctx, delay); waitErr != nil {
		return nil, Classify(waitErr, internal.ModeChat)
	}
	if err != nil {
		return nil, Classify(err, internal.ModeChat)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You said: %s", text)
	if len(attachments) > 0 {
		fmt.Fprintf(&b, " (with %d image(s))", len(attachments))
	}
	if n := conv.Len() / 2; n > 0 {
		fmt.Fprintf(&b, "\n\nThis is turn %d of our chat.", n+1)
	}

	reply := &internal.TurnReply{Text: b.String()}
	conv.Record(userTurn(text, attachments), modelTurn(reply.Text))
	return reply, nil
}

func (m *Mock) GenerateImage(ctx context.Context, prompt string) (*internal.ImageReply, error) {
	m.mu.Lock()
	m.imageCalls++
	m.prompts = append(m.prompts, prompt)
	err, delay := m.Err, m.Delay
	m.mu.Unlock()

	if waitErr := m.wait(ctx, delay); waitErr != nil {
		return nil, Classify(waitErr, internal.ModeImage)
	}
	if err != nil {
		return nil, Classify(err, internal.ModeImage)
	}
	return &internal.ImageReply{
		ImageURL: "data:image/png;base64," + mockImage,
		Text:     imageCaption,
	}, nil
}

// Calls returns the number of chat and image requests made
func (m *Mock) Calls() (chat, image int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatCalls, m.imageCalls
}

// Prompts returns the image prompts received
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *Mock) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
