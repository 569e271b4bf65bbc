package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers turns after release is closed (or immediately when release is nil)
type fakeGateway struct {
	mu         sync.Mutex
	release    chan struct{}
	started    chan struct{}
	err        error
	contextErr error
	sources    []GroundingChunk
	chatCalls  int
	imageCalls int
	prompts    []string
}

func (f *fakeGateway) NewContext(ctx context.Context, history []ChatMessage) (*Conversation, error) {
	if f.contextErr != nil {
		return nil, f.contextErr
	}
	return NewConversation(history), nil
}

func (f *fakeGateway) block() {
	f.mu.Lock()
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
}

func (f *fakeGateway) ExchangeTurn(ctx context.Context, conv *Conversation, text string, attachments []Attachment) (*TurnReply, error) {
	f.mu.Lock()
	f.chatCalls++
	f.prompts = append(f.prompts, text)
	f.mu.Unlock()
	f.block()
	if f.err != nil {
		return nil, f.err
	}
	return &TurnReply{Text: "echo: " + text, Sources: f.sources}, nil
}

func (f *fakeGateway) GenerateImage(ctx context.Context, prompt string) (*ImageReply, error) {
	f.mu.Lock()
	f.imageCalls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	f.block()
	if f.err != nil {
		return nil, f.err
	}
	return &ImageReply{ImageURL: "data:image/png;base64,AAAA", Text: "Here is the image you asked for."}, nil
}

func newTestController(t *testing.T, gw *fakeGateway) *Controller {
	t.Helper()
	sessions := NewSessionStore(NewMemoryStore())
	require.NoError(t, sessions.Load("Asha"))
	c := NewController(gw, sessions)
	require.NoError(t, c.NewChat(context.Background()))
	return c
}

func TestController_SendChat(t *testing.T) {
	gw := &fakeGateway{sources: []GroundingChunk{
		{Web: &WebSource{URI: "https://example.com", Title: "Example"}},
		{},
	}}
	c := newTestController(t, gw)

	result, err := c.Send(context.Background(), "  hello there  ", nil)
	require.NoError(t, err)
	require.NotNil(t, result.Reply)

	assert.Equal(t, ModeChat, result.Mode)
	assert.Nil(t, result.Err)
	assert.Equal(t, "echo: hello there", result.Reply.Text)
	assert.Len(t, result.Reply.Sources, 1, "non-web chunks are dropped")
	assert.False(t, c.Loading())

	session, ok := c.Sessions().Active()
	require.True(t, ok)
	assert.Equal(t, result.SessionID, session.ID)
	assert.Equal(t, "hello there", session.Title)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, RoleUser, session.Messages[0].Role)
	assert.Equal(t, RoleModel, session.Messages[1].Role)

	_, err = c.Send(context.Background(), "again", nil)
	require.NoError(t, err)
	session, _ = c.Sessions().Active()
	assert.Len(t, session.Messages, 4, "second send appends to the active session")
	assert.Len(t, c.Sessions().List(), 1)
}

func TestController_UserMessageVisibleBeforeReply(t *testing.T) {
	gw := &fakeGateway{release: make(chan struct{}), started: make(chan struct{}, 1)}
	c := newTestController(t, gw)

	done := make(chan *SendResult)
	go func() {
		result, _ := c.Send(context.Background(), "hi", nil)
		done <- result
	}()

	<-gw.started
	assert.True(t, c.Loading())
	session, ok := c.Sessions().Active()
	require.True(t, ok)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, RoleUser, session.Messages[0].Role)

	_, err := c.Send(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrSendInProgress)

	close(gw.release)
	result := <-done
	require.NotNil(t, result.Reply)
	session, _ = c.Sessions().Active()
	assert.Len(t, session.Messages, 2)
}

func TestController_Stop(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "chat", input: "tell me a story"},
		{name: "image", input: "/imagine a red fox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{release: make(chan struct{}), started: make(chan struct{}, 1)}
			c := newTestController(t, gw)

			done := make(chan *SendResult)
			go func() {
				result, _ := c.Send(context.Background(), tt.input, nil)
				done <- result
			}()

			<-gw.started
			c.Stop()
			assert.False(t, c.Loading(), "Stop clears loading immediately")

			close(gw.release)
			result := <-done
			assert.True(t, result.Cancelled)
			assert.Nil(t, result.Reply)

			session, ok := c.Sessions().Get(result.SessionID)
			require.True(t, ok)
			require.Len(t, session.Messages, 1, "nothing is appended after the user turn")
			assert.Equal(t, RoleUser, session.Messages[0].Role)
			assert.Equal(t, "", c.LastError())
		})
	}
}

func TestController_StopDoesNotDisturbNextCycle(t *testing.T) {
	first := make(chan struct{})
	gw := &fakeGateway{release: first, started: make(chan struct{}, 2)}
	c := newTestController(t, gw)

	stopped := make(chan *SendResult)
	go func() {
		result, _ := c.Send(context.Background(), "slow", nil)
		stopped <- result
	}()
	<-gw.started
	c.Stop()

	// Second cycle starts while the first call is still in flight.
	second := make(chan struct{})
	gw.mu.Lock()
	gw.release = second
	gw.mu.Unlock()

	done := make(chan *SendResult)
	go func() {
		result, _ := c.Send(context.Background(), "fast", nil)
		done <- result
	}()
	<-gw.started

	close(first)
	assert.True(t, (<-stopped).Cancelled)
	assert.True(t, c.Loading(), "the stale cycle must not clear the new cycle's loading state")

	close(second)
	result := <-done
	require.NotNil(t, result.Reply)
	assert.Equal(t, "echo: fast", result.Reply.Text)
	assert.False(t, c.Loading())

	session, _ := c.Sessions().Get(result.SessionID)
	texts := make([]string, 0, len(session.Messages))
	for _, m := range session.Messages {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"slow", "fast", "echo: fast"}, texts)
}

func TestController_ImageMode(t *testing.T) {
	gw := &fakeGateway{}
	c := newTestController(t, gw)

	result, err := c.Send(context.Background(), "/imagine a red fox", nil)
	require.NoError(t, err)
	assert.Equal(t, ModeImage, result.Mode)
	assert.Equal(t, []string{"a red fox"}, gw.prompts)
	assert.Equal(t, 0, gw.chatCalls)
	assert.Equal(t, "/imagine a red fox", result.User.Text)
	assert.Equal(t, "data:image/png;base64,AAAA", result.Reply.ImageURL)
}

func TestController_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr func(error) bool
	}{
		{name: "empty", input: "   ", wantErr: func(err error) bool { return errors.Is(err, ErrEmptyInput) }},
		{name: "imagine without prompt", input: "/imagine", wantErr: func(err error) bool {
			var v *ValidationError
			return errors.As(err, &v) && v.Reason == "Please provide a prompt after /imagine."
		}},
		{name: "imagine with spaces", input: "/imagine    ", wantErr: func(err error) bool {
			var v *ValidationError
			return errors.As(err, &v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			c := newTestController(t, gw)

			result, err := c.Send(context.Background(), tt.input, nil)
			assert.Nil(t, result)
			assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
			assert.Equal(t, 0, gw.chatCalls+gw.imageCalls)
			assert.Empty(t, c.Sessions().List(), "rejections never touch history")
			assert.False(t, c.Loading())
		})
	}
}

func TestController_ServiceFailure(t *testing.T) {
	gw := &fakeGateway{err: NewServiceError(KindCredentialInvalid, ModeChat, errors.New("API key not valid"))}
	c := newTestController(t, gw)

	result, err := c.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindCredentialInvalid, result.Err.Kind)

	require.NotNil(t, result.Reply)
	assert.True(t, result.Reply.IsError())
	assert.True(t, strings.HasPrefix(result.Reply.Text, "Sorry, I encountered an error: "))
	assert.Contains(t, result.Reply.Text, "API key is invalid. Please ensure it is configured correctly.")
	assert.Equal(t, result.Err.Message, c.LastError())

	session, _ := c.Sessions().Get(result.SessionID)
	assert.Len(t, session.Messages, 2)

	gw.err = nil
	_, err = c.Send(context.Background(), "retry", nil)
	require.NoError(t, err)
	assert.Equal(t, "", c.LastError(), "a new cycle clears the banner")
}

func TestController_UnclassifiedFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	c := newTestController(t, gw)

	result, err := c.Send(context.Background(), "/imagine a cat", nil)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, result.Err.Kind)
	assert.Equal(t, ServiceMessage(KindUnknown, ModeImage), result.Err.Message)
}

func TestController_MissingConversation(t *testing.T) {
	gw := &fakeGateway{contextErr: NewServiceError(KindCredentialInvalid, ModeChat, errors.New("no key"))}
	sessions := NewSessionStore(NewMemoryStore())
	c := NewController(gw, sessions)

	assert.Error(t, c.NewChat(context.Background()))
	assert.Equal(t, "API key is invalid. Please ensure it is configured correctly.", c.LastError())

	result, err := c.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindSessionInit, result.Err.Kind)
	assert.Equal(t, 0, gw.chatCalls)
}

func TestController_SelectAndDelete(t *testing.T) {
	gw := &fakeGateway{}
	c := newTestController(t, gw)
	ctx := context.Background()
	c.SetClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	c.Sessions().SetClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	first, err := c.Send(ctx, "first chat", nil)
	require.NoError(t, err)
	require.NoError(t, c.NewChat(ctx))
	assert.Equal(t, "", c.Sessions().ActiveID())

	second, err := c.Send(ctx, "second chat", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	require.NoError(t, c.SelectChat(ctx, first.SessionID))
	assert.Equal(t, first.SessionID, c.Sessions().ActiveID())
	c.mu.Lock()
	assert.Equal(t, 2, c.conv.Len(), "selected history seeds the conversation")
	c.mu.Unlock()

	require.NoError(t, c.SelectChat(ctx, "unknown"))
	assert.Equal(t, first.SessionID, c.Sessions().ActiveID())

	require.NoError(t, c.DeleteChat(ctx, second.SessionID))
	assert.Equal(t, first.SessionID, c.Sessions().ActiveID(), "deleting another chat keeps the active one")

	require.NoError(t, c.DeleteChat(ctx, first.SessionID))
	assert.Equal(t, "", c.Sessions().ActiveID())
	assert.Empty(t, c.Sessions().List())
}
