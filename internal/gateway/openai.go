package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	log "github.com/sirupsen/logrus"
)

// OpenAI is a chat-only Gateway for OpenAI-compatible endpoints
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the gateway. Without an API key requests go out unauthenticated,
// which suits local OpenAI-compatible servers.
func NewOpenAI(cfg internal.OpenAIConfig) *OpenAI {
	var options []option.RequestOption
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey == "" {
		log.Info("OPENAI_API_KEY is not set, will try unauthenticated access")
	} else {
		options = append(options, option.WithAPIKey(cfg.APIKey))
	}

	model := cfg.Model
	if model == "" {
		model = internal.DefaultOpenAIModel
	}

	client := openai.NewClient(options...)
	return &OpenAI{client: &client, model: model}
}

func (o *OpenAI) NewContext(ctx context.Context, history []internal.ChatMessage) (*internal.Conversation, error) {
	return internal.NewConversation(history), nil
}

func (o *OpenAI) ExchangeTurn(ctx context.Context, conv *internal.Conversation, text string, attachments []internal.Attachment) (*internal.TurnReply, error) {
	if len(attachments) > 0 {
		return nil, internal.NewServiceError(internal.KindMalformedRequest, internal.ModeChat,
			errors.New("image attachments are not supported by the openai provider"))
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(SystemInstruction)}
	for _, m := range conv.History() {
		if m.Text == "" {
			continue
		}
		if m.Role == internal.RoleModel {
			messages = append(messages, openai.AssistantMessage(m.Text))
		} else {
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	messages = append(messages, openai.UserMessage(text))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    o.model,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, classify(err, internal.ModeChat, status{code: int64(apiErr.StatusCode)})
		}
		return nil, Classify(err, internal.ModeChat)
	}

	if len(resp.Choices) == 0 {
		return nil, internal.NewServiceError(internal.KindUnknown, internal.ModeChat, fmt.Errorf("client didn't return any content choices"))
	}

	reply := &internal.TurnReply{Text: resp.Choices[0].Message.Content}
	conv.Record(userTurn(text, nil), modelTurn(reply.Text))
	return reply, nil
}

func (o *OpenAI) GenerateImage(ctx context.Context, prompt string) (*internal.ImageReply, error) {
	return nil, internal.NewServiceError(internal.KindMalformedRequest, internal.ModeImage,
		errors.New("image generation is not supported by the openai provider"))
}
