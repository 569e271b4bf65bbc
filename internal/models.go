package internal

import (
	"strings"
	"sync"
)

// GuestName is the profile name used by ContinueAsGuest
const GuestName = "Guest"

const imaginePrefix = "/imagine"

// UserProfile is the live identity. Name partitions persisted sessions.
type UserProfile struct {
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"` // data URL
}

// IsGuest reports whether the profile is the unpersisted guest identity
func (p UserProfile) IsGuest() bool {
	return p.Name == GuestName
}

// Account is a locally stored credential record
type Account struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Mode selects which gateway operation a send cycle uses
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeImage Mode = "image"
)

// ParseMode picks the send mode for trimmed input and returns the text to send.
// For image mode the returned text is the prompt after the /imagine command.
func ParseMode(input string) (Mode, string) {
	trimmed := strings.TrimSpace(input)
	n := len(imaginePrefix)
	if len(trimmed) >= n && strings.EqualFold(trimmed[:n], imaginePrefix) {
		return ModeImage, strings.TrimSpace(trimmed[n:])
	}
	return ModeChat, trimmed
}

// TurnReply is the result of a conversational exchange
type TurnReply struct {
	Text    string
	Sources []GroundingChunk
}

// ImageReply is the result of an image generation request
type ImageReply struct {
	ImageURL string
	Text     string
}

// Conversation is the transient multi-turn context for one chat.
// It lives only in memory and is rebuilt on NewChat or SelectChat.
type Conversation struct {
	mu      sync.Mutex
	history []ChatMessage
}

// NewConversation seeds a conversation with prior turns. Error turns are skipped.
func NewConversation(history []ChatMessage) *Conversation {
	c := &Conversation{}
	for _, m := range history {
		if m.IsError() || (m.Text == "" && len(m.Attachments) == 0) {
			continue
		}
		c.history = append(c.history, m)
	}
	return c
}

// History returns a copy of the recorded turns
func (c *Conversation) History() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

// Record appends a completed exchange
func (c *Conversation) Record(user, reply ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, user, reply)
}

// Len returns the number of recorded turns
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
