package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopStreamer struct{}

func (nopStreamer) StreamChat(context.Context, *Prompt) (<-chan models.StreamChunk, error) {
	return nil, nil
}

func TestRouterResolve(t *testing.T) {
	r := NewRouter("gemini-2.0-flash")
	gemini, gpt := nopStreamer{}, &nopStreamer{}
	r.Register(gemini, "gemini-2.0-flash", "gemini-2.5-pro-preview-06-05")
	r.Register(gpt, "gpt-4o")

	s, model, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)
	assert.Equal(t, gemini, s)

	s, model, err = r.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
	assert.Same(t, gpt, s)

	_, model, err = r.Resolve("llama-9000")
	assert.ErrorIs(t, err, models.ErrUnsupportedModel)
	assert.Equal(t, "llama-9000", model)

	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.5-pro-preview-06-05", "gpt-4o"}, r.Models())
}

func samplePrompt() *Prompt {
	return &Prompt{
		Model:  "m",
		System: "be brief",
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: models.Content{Text: "house rules"}},
			{Role: models.RoleUser, Content: models.Content{Text: "hi"}},
			{Role: models.RoleAssistant, Content: models.Content{Text: "hello"}},
			{Role: models.RoleUser, Content: models.Content{Parts: []models.ContentPart{
				{Type: "text", Text: "what is this?"},
				{Type: "image", Image: &models.InlineImage{MimeType: "image/jpeg", Data: "aGVsbG8="}},
			}}},
		},
		Files:   []models.FileRef{{URI: "https://files/abc", MimeType: "application/pdf"}},
		Context: "search results: none",
	}
}

func TestGeminiContents(t *testing.T) {
	cfg, contents, err := geminiContents(samplePrompt())
	require.NoError(t, err)

	require.NotNil(t, cfg)
	require.Len(t, cfg.SystemInstruction.Parts, 2)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "house rules", cfg.SystemInstruction.Parts[1].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)

	last := contents[2]
	require.Len(t, last.Parts, 4)
	require.NotNil(t, last.Parts[0].FileData)
	assert.Equal(t, "https://files/abc", last.Parts[0].FileData.FileURI)
	assert.Equal(t, "what is this?", last.Parts[1].Text)
	require.NotNil(t, last.Parts[2].InlineData)
	assert.Equal(t, []byte("hello"), last.Parts[2].InlineData.Data)
	assert.Equal(t, "search results: none", last.Parts[3].Text)
}

func TestGeminiContentsRejectsBadImage(t *testing.T) {
	p := &Prompt{Messages: []models.Message{{Role: models.RoleUser, Content: models.Content{Parts: []models.ContentPart{
		{Type: "image", Image: &models.InlineImage{Data: "%%%"}},
	}}}}}
	_, _, err := geminiContents(p)
	assert.Error(t, err)
}

func TestGeminiMissingKey(t *testing.T) {
	_, err := NewGeminiStreamer("").StreamChat(context.Background(), samplePrompt())
	var missing *models.MissingCredentialError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "GEMINI_API_KEY", missing.Env)
}

func TestOpenAIMessages(t *testing.T) {
	msgs := openAIMessages(samplePrompt())
	// system prompt, system rule, user, assistant, user
	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[3].OfAssistant)
	require.NotNil(t, msgs[4].OfUser)
	// text, image, attached file note, context
	assert.Len(t, msgs[4].OfUser.Content.OfArrayOfContentParts, 4)
}

func TestOpenAIStreamerRequiresKeyForOpenAIHost(t *testing.T) {
	s := NewOpenAIStreamer(config.OpenAIConfig{BaseURL: "https://api.openai.com/v1"})
	_, err := s.StreamChat(context.Background(), samplePrompt())
	var missing *models.MissingCredentialError
	assert.ErrorAs(t, err, &missing)
}

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`+"\n\n", content)
}

func TestOpenAIStreamerStreamsTokensInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range []string{"Hel", "", "lo", " world"} {
			_, _ = io.WriteString(w, sseChunk(tok))
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	s := NewOpenAIStreamer(config.OpenAIConfig{BaseURL: srv.URL})
	ch, err := s.StreamChat(context.Background(), samplePrompt())
	require.NoError(t, err)

	var tokens []string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		tokens = append(tokens, chunk.Delta)
	}
	assert.Equal(t, []string{"Hel", "lo", " world"}, tokens)
}

func TestOpenAIStreamerReportsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad model"}}`)
	}))
	defer srv.Close()

	s := NewOpenAIStreamer(config.OpenAIConfig{BaseURL: srv.URL})
	ch, err := s.StreamChat(context.Background(), samplePrompt())
	require.NoError(t, err)

	var last models.StreamChunk
	for chunk := range ch {
		last = chunk
	}
	var apiErr *openai.Error
	require.ErrorAs(t, last.Err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
