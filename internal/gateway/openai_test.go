package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_ExchangeTurn(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"local",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Namaste!"}}]}`)
	}))
	defer srv.Close()

	o := NewOpenAI(internal.OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "k", Model: "local"})
	ctx := context.Background()
	conv, err := o.NewContext(ctx, []internal.ChatMessage{{Role: internal.RoleUser, Text: "earlier"}})
	require.NoError(t, err)

	reply, err := o.ExchangeTurn(ctx, conv, "say hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Namaste!", reply.Text)
	assert.Equal(t, 3, conv.Len())

	messages, _ := got["messages"].([]any)
	require.Len(t, messages, 3, "system, history and the new turn")
	assert.Equal(t, "local", got["model"])
}

func TestOpenAI_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	o := NewOpenAI(internal.OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "bad"})
	_, err := o.ExchangeTurn(context.Background(), internal.NewConversation(nil), "hi", nil)

	var svcErr *internal.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, internal.KindCredentialInvalid, svcErr.Kind)
}

func TestOpenAI_UnsupportedOperations(t *testing.T) {
	o := NewOpenAI(internal.OpenAIConfig{BaseURL: "http://127.0.0.1:1"})
	ctx := context.Background()

	_, err := o.GenerateImage(ctx, "a cat")
	var svcErr *internal.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, internal.KindMalformedRequest, svcErr.Kind)

	_, err = o.ExchangeTurn(ctx, internal.NewConversation(nil), "look", []internal.Attachment{{MimeType: "image/png", Data: "aGk="}})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, internal.KindMalformedRequest, svcErr.Kind)
}
