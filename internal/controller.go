package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Gateway is the AI service as the controller sees it
type Gateway interface {
	// NewContext creates a conversation seeded with history
	NewContext(ctx context.Context, history []ChatMessage) (*Conversation, error)
	// ExchangeTurn sends one user turn within conv and records it on success
	ExchangeTurn(ctx context.Context, conv *Conversation, text string, attachments []Attachment) (*TurnReply, error)
	// GenerateImage produces an image for prompt, outside any conversation
	GenerateImage(ctx context.Context, prompt string) (*ImageReply, error)
}

// SendResult describes a completed send cycle
type SendResult struct {
	SessionID string
	Mode      Mode
	User      ChatMessage
	Reply     *ChatMessage  // assistant turn, or the error turn on failure
	Err       *ServiceError // set when the service failed
	Cancelled bool          // Stop was called; nothing was appended after User
}

// request is the handle for one send cycle. cancelled is guarded by Controller.mu.
type request struct {
	cancelled bool
}

// Controller runs send cycles against the active session, one at a time
type Controller struct {
	mu       sync.Mutex
	gateway  Gateway
	sessions *SessionStore
	conv     *Conversation
	current  *request
	lastErr  string
	now      func() time.Time
}

// NewController creates a controller. Call NewChat before the first Send.
func NewController(gateway Gateway, sessions *SessionStore) *Controller {
	return &Controller{gateway: gateway, sessions: sessions, now: time.Now}
}

// SetClock replaces the time source, for tests
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Loading reports whether a send cycle is outstanding
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// LastError returns the banner message of the last failure, or ""
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sessions exposes the session store the controller writes to
func (c *Controller) Sessions() *SessionStore {
	return c.sessions
}

// NewChat starts a fresh conversation and clears the active session
func (c *Controller) NewChat(ctx context.Context) error {
	c.sessions.NewChat()
	return c.resetContext(ctx, nil)
}

// SelectChat activates a session and seeds a conversation from its history.
// Unknown ids are ignored.
func (c *Controller) SelectChat(ctx context.Context, id string) error {
	if !c.sessions.Select(id) {
		return nil
	}
	session, _ := c.sessions.Get(id)
	return c.resetContext(ctx, session.Messages)
}

// DeleteChat deletes a session. Deleting the active one starts a new chat.
func (c *Controller) DeleteChat(ctx context.Context, id string) error {
	wasActive, err := c.sessions.Delete(id)
	if err != nil {
		LogWarn("Failed to persist sessions after delete: %v", err)
	}
	if wasActive {
		return c.NewChat(ctx)
	}
	return nil
}

func (c *Controller) resetContext(ctx context.Context, history []ChatMessage) error {
	conv, err := c.gateway.NewContext(ctx, history)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.conv = nil
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			c.lastErr = svcErr.Message
		} else {
			c.lastErr = err.Error()
		}
		return err
	}
	c.conv = conv
	return nil
}

// Stop abandons the outstanding send cycle. Loading clears immediately and the
// cycle's result is discarded when it arrives. The network call is not aborted.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.current.cancelled = true
	c.current = nil
	LogDebug("Send cycle stopped")
}

// Send runs one send cycle. It returns ErrSendInProgress, ErrEmptyInput or a
// *ValidationError without side effects. Service failures are not returned as
// errors: they are appended as an error turn and reported in SendResult.Err.
func (c *Controller) Send(ctx context.Context, input string, attachments []Attachment) (*SendResult, error) {
	text := strings.TrimSpace(input)
	mode, payload := ParseMode(text)

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		observeSend(mode, OutcomeRejected)
		return nil, ErrSendInProgress
	}
	if text == "" && len(attachments) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyInput
	}
	if mode == ModeImage && payload == "" {
		c.mu.Unlock()
		observeSend(mode, OutcomeRejected)
		return nil, &ValidationError{Field: "prompt", Reason: "Please provide a prompt after /imagine."}
	}
	req := &request{}
	c.current = req
	c.lastErr = ""
	conv := c.conv
	now := c.now
	c.mu.Unlock()
	defer c.finish(req)

	result := &SendResult{Mode: mode, User: NewUserMessage(text, attachments, now())}
	logger := log.WithField("mode", mode)

	sessionID := c.sessions.ActiveID()
	if sessionID == "" {
		id, err := c.sessions.Create(result.User)
		if err != nil {
			LogWarn("Failed to persist new session: %v", err)
		}
		sessionID = id
	} else if _, err := c.sessions.Append(sessionID, result.User); err != nil {
		LogWarn("Failed to persist user message: %v", err)
	}
	result.SessionID = sessionID
	logger = logger.WithField("session_id", sessionID)
	logger.Debug("sending")

	start := time.Now()
	reply, err := c.dispatch(ctx, mode, conv, payload, attachments, now)
	var svcErr *ServiceError
	if err != nil {
		svcErr = asServiceError(err, mode)
	}
	observeGateway(mode, time.Since(start), svcErr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if req.cancelled {
		logger.Debug("discarding result of stopped send")
		result.Cancelled = true
		observeSend(mode, OutcomeCancelled)
		return result, nil
	}

	if svcErr != nil {
		logger.WithField("kind", svcErr.Kind).WithError(svcErr.Err).Warn("send failed")
		c.lastErr = svcErr.Message
		errMsg := NewErrorMessage(svcErr.Message, now())
		reply = &errMsg
		result.Err = svcErr
		observeSend(mode, OutcomeError)
	} else {
		observeSend(mode, OutcomeSuccess)
	}

	if _, err := c.sessions.Append(sessionID, *reply); err != nil {
		LogWarn("Failed to persist reply: %v", err)
	}
	result.Reply = reply
	return result, nil
}

func (c *Controller) dispatch(ctx context.Context, mode Mode, conv *Conversation, payload string, attachments []Attachment, now func() time.Time) (*ChatMessage, error) {
	if mode == ModeImage {
		img, err := c.gateway.GenerateImage(ctx, payload)
		if err != nil {
			return nil, err
		}
		msg := NewModelMessage(img.Text, img.ImageURL, nil, now())
		return &msg, nil
	}

	if conv == nil {
		return nil, NewServiceError(KindSessionInit, mode, errors.New("no conversation context"))
	}
	turn, err := c.gateway.ExchangeTurn(ctx, conv, payload, attachments)
	if err != nil {
		return nil, err
	}
	msg := NewModelMessage(turn.Text, "", FilterWebSources(turn.Sources), now())
	return &msg, nil
}

// finish returns to idle unless a newer cycle has taken over
func (c *Controller) finish(req *request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == req {
		c.current = nil
	}
}

func asServiceError(err error, mode Mode) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return NewServiceError(KindUnknown, mode, err)
}
