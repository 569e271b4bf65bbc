package internal

import (
	"time"
)

// CreateTestSession creates a session with one exchange
func CreateTestSession(id string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:    id,
		Title: "Hello, how are you?",
		Messages: []ChatMessage{
			NewUserMessage("Hello, how are you?", nil, now),
			NewModelMessage("I'm doing well, thank you!", "", []GroundingChunk{
				{Web: &WebSource{URI: "https://example.com/wellbeing", Title: "Wellbeing"}},
			}, now),
		},
	}
}

// CreateTestSessionWithMessages creates a session with custom messages
func CreateTestSessionWithMessages(id string, messages []ChatMessage) *ChatSession {
	title := imageOnlyTitle
	if len(messages) > 0 {
		title = SessionTitle(messages[0].Text)
	}
	return &ChatSession{
		ID:       id,
		Title:    title,
		Messages: messages,
	}
}

// CreateTestImageMessage creates a model message carrying a tiny PNG
func CreateTestImageMessage() ChatMessage {
	return NewModelMessage(imageCaptionForTests, "data:image/png;base64,iVBORw0KGgo=", nil, time.Now())
}

const imageCaptionForTests = "Here is the image you asked for."
