package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/gujjar-gpt/internal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// finish reasons that mean the model refused on safety grounds
var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"PROHIBITED_CONTENT": true,
	"BLOCKLIST":          true,
	"SPII":               true,
	"IMAGE_SAFETY":       true,
}

// Gemini is the Gateway backed by the Gemini API
type Gemini struct {
	client     *genai.Client
	chatModel  string
	imageModel string
}

// NewGemini creates a Gemini gateway from config
func NewGemini(ctx context.Context, cfg internal.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, internal.NewServiceError(internal.KindCredentialInvalid, internal.ModeChat,
			errors.New("API key not configured (set GEMINI_API_KEY or API_KEY)"))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = internal.DefaultChatModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = internal.DefaultImageModel
	}

	return &Gemini{client: client, chatModel: chatModel, imageModel: imageModel}, nil
}

// NewContext starts a conversation. Gemini keeps no server-side chat state,
// so the history travels with every request.
func (g *Gemini) NewContext(ctx context.Context, history []internal.ChatMessage) (*internal.Conversation, error) {
	if g.client == nil {
		return nil, internal.NewServiceError(internal.KindSessionInit, internal.ModeChat, errors.New("gemini client not initialized"))
	}
	return internal.NewConversation(history), nil
}

// ExchangeTurn sends text and attachments with the conversation so far
func (g *Gemini) ExchangeTurn(ctx context.Context, conv *internal.Conversation, text string, attachments []internal.Attachment) (*internal.TurnReply, error) {
	user := userTurn(text, attachments)

	var contents []*genai.Content
	for _, m := range conv.History() {
		if c := toContent(m); c != nil {
			contents = append(contents, c)
		}
	}
	current := toContent(user)
	if current == nil {
		return nil, internal.NewServiceError(internal.KindMalformedRequest, internal.ModeChat, errors.New("empty message"))
	}
	contents = append(contents, current)

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       &temp,
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	res, err := g.client.Models.GenerateContent(ctx, g.chatModel, contents, cfg)
	if err != nil {
		return nil, classifyGemini(err, internal.ModeChat)
	}
	if blocked(res) {
		return nil, internal.NewServiceError(internal.KindUnknown, internal.ModeChat, errors.New("response blocked"))
	}

	reply := &internal.TurnReply{
		Text:    res.Text(),
		Sources: groundingSources(res),
	}
	conv.Record(user, modelTurn(reply.Text))
	log.WithField("sources", len(reply.Sources)).Debug("gemini reply received")
	return reply, nil
}

// GenerateImage asks the image model for a picture of prompt
func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (*internal.ImageReply, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	res, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, cfg)
	if err != nil {
		return nil, classifyGemini(err, internal.ModeImage)
	}
	if blocked(res) {
		return nil, internal.NewServiceError(internal.KindContentBlocked, internal.ModeImage, errors.New("prompt was blocked"))
	}

	text := res.Text()
	reply := &internal.ImageReply{Text: text}
	if reply.Text == "" {
		reply.Text = noImageText
	}

	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if part == nil || part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			reply.ImageURL = "data:" + part.InlineData.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data)
			if strings.TrimSpace(text) == "" {
				reply.Text = imageCaption
			}
			break
		}
	}
	return reply, nil
}

func toContent(m internal.ChatMessage) *genai.Content {
	var parts []*genai.Part
	if m.Text != "" {
		parts = append(parts, genai.NewPartFromText(m.Text))
	}
	for _, a := range m.Attachments {
		data, err := a.Bytes()
		if err != nil {
			log.WithError(err).Warn("skipping undecodable attachment")
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, a.MimeType))
	}
	if len(parts) == 0 {
		return nil
	}

	role := genai.RoleUser
	if m.Role == internal.RoleModel {
		role = genai.RoleModel
	}
	return genai.NewContentFromParts(parts, genai.Role(role))
}

func blocked(res *genai.GenerateContentResponse) bool {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return true
	}
	if len(res.Candidates) == 0 {
		return false
	}
	return blockedFinishReasons[string(res.Candidates[0].FinishReason)]
}

func groundingSources(res *genai.GenerateContentResponse) []internal.GroundingChunk {
	if len(res.Candidates) == 0 || res.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []internal.GroundingChunk
	for _, chunk := range res.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, internal.GroundingChunk{
			Web: &internal.WebSource{URI: chunk.Web.URI, Title: chunk.Web.Title},
		})
	}
	return out
}

// classifyGemini reads the status from a genai.APIError before falling back to
// the error text
func classifyGemini(err error, mode internal.Mode) *internal.ServiceError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classify(err, mode, status{code: int64(apiErr.Code), name: apiErr.Status, message: apiErr.Message})
	}
	return Classify(err, mode)
}
