package internal

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// TimestampLayout is ISO-8601 with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	maxTitleLen    = 30
	titleCutLen    = 27
	imageOnlyTitle = "Image Analysis"
	errorPrefix    = "Sorry, I encountered an error: "
)

// ChatSession is one conversation thread. Messages are append-only.
type ChatSession struct {
	ID       string        `json:"id" yaml:"id"`
	Title    string        `json:"title" yaml:"title"`
	Messages []ChatMessage `json:"messages" yaml:"messages"`
}

// ChatMessage is a single immutable turn
type ChatMessage struct {
	ID          string           `json:"id" yaml:"id"`
	Timestamp   string           `json:"timestamp" yaml:"timestamp"`
	Role        Role             `json:"role" yaml:"role"`
	Text        string           `json:"text" yaml:"text"`
	Attachments []Attachment     `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Sources     []GroundingChunk `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Attachment is an inline image sent with a user message
type Attachment struct {
	MimeType string `json:"mimeType" yaml:"mimeType"`
	Data     string `json:"data" yaml:"-"` // base64
}

// GroundingChunk is a web citation returned with a grounded reply
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty" yaml:"web,omitempty"`
}

// WebSource is the web reference inside a GroundingChunk
type WebSource struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// IsError reports whether the message is an error turn
func (m ChatMessage) IsError() bool {
	return strings.HasPrefix(m.ID, "error-")
}

// FormatTimestamp formats t the way messages store it
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewUserMessage creates a user turn
func NewUserMessage(text string, attachments []Attachment, now time.Time) ChatMessage {
	return ChatMessage{
		ID:          "user-" + uuid.NewString(),
		Timestamp:   FormatTimestamp(now),
		Role:        RoleUser,
		Text:        text,
		Attachments: attachments,
	}
}

// NewModelMessage creates an assistant turn
func NewModelMessage(text, imageURL string, sources []GroundingChunk, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        "ai-" + uuid.NewString(),
		Timestamp: FormatTimestamp(now),
		Role:      RoleModel,
		Text:      text,
		ImageURL:  imageURL,
		Sources:   sources,
	}
}

// NewErrorMessage creates the assistant turn appended after a failed send
func NewErrorMessage(userMessage string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        "error-" + uuid.NewString(),
		Timestamp: FormatTimestamp(now),
		Role:      RoleModel,
		Text:      errorPrefix + userMessage,
	}
}

// SessionTitle derives a session title from the first user message text
func SessionTitle(text string) string {
	title := strings.TrimSpace(text)
	if title == "" {
		return imageOnlyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		runes := []rune(title)
		return string(runes[:titleCutLen]) + "..."
	}
	return title
}

// FilterWebSources keeps only chunks that carry a web reference
func FilterWebSources(chunks []GroundingChunk) []GroundingChunk {
	var out []GroundingChunk
	for _, c := range chunks {
		if c.Web != nil && c.Web.URI != "" {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the last message in the session, if any
func (s *ChatSession) Last() (ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Find looks up a message by id
func (s *ChatSession) Find(id string) (ChatMessage, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return ChatMessage{}, false
}

func (s ChatSession) clone() ChatSession {
	msgs := make([]ChatMessage, len(s.Messages))
	copy(msgs, s.Messages)
	s.Messages = msgs
	return s
}
