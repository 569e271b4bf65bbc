// Package gateway talks to the hosted generative-AI providers.
package gateway

import (
	"context"
	"fmt"

	"github.com/iksnae/gujjar-gpt/internal"
)

// SystemInstruction is sent with every conversational request
const SystemInstruction = "You are GujjarGPT, a witty, creative, and friendly chatbot. " +
	"You provide helpful and engaging answers. Keep your responses concise and well-formatted. " +
	"You must provide reality and research-based answers by using your search tool when appropriate."

const (
	imageCaption = "Here is the image you asked for."
	noImageText  = "I couldn't generate an image for that. Please try another prompt."
)

// New builds the gateway for cfg.Provider
func New(ctx context.Context, cfg *internal.Config) (internal.Gateway, error) {
	switch cfg.Provider {
	case "", internal.ProviderGemini:
		g, err := NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return g, nil
	case internal.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI), nil
	case internal.ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: gemini, openai, mock)", cfg.Provider)
	}
}

func userTurn(text string, attachments []internal.Attachment) internal.ChatMessage {
	return internal.ChatMessage{Role: internal.RoleUser, Text: text, Attachments: attachments}
}

func modelTurn(text string) internal.ChatMessage {
	return internal.ChatMessage{Role: internal.RoleModel, Text: text}
}
