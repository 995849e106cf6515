package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/kdduha/chatgateway/internal/models"
	"google.golang.org/genai"
)

// GeminiStreamer streams from the Gemini API. The client is created on first
// use so a missing key only fails the requests that need it.
type GeminiStreamer struct {
	apiKey string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiStreamer(apiKey string) *GeminiStreamer {
	return &GeminiStreamer{apiKey: apiKey}
}

func (g *GeminiStreamer) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, &models.MissingCredentialError{
			Capability: "Gemini chat", Env: "GEMINI_API_KEY", Where: "https://aistudio.google.com/app/apikey",
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *GeminiStreamer) StreamChat(ctx context.Context, prompt *Prompt) (<-chan models.StreamChunk, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	cfg, contents, err := geminiContents(prompt)
	if err != nil {
		return nil, err
	}

	return forward(ctx, func(send func(models.StreamChunk) bool) {
		for resp, err := range client.Models.GenerateContentStream(ctx, prompt.Model, contents, cfg) {
			if err != nil {
				send(models.StreamChunk{Err: err})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !send(models.StreamChunk{Delta: text}) {
				return
			}
		}
	}), nil
}

func geminiContents(prompt *Prompt) (*genai.GenerateContentConfig, []*genai.Content, error) {
	var (
		cfg      *genai.GenerateContentConfig
		system   []*genai.Part
		contents []*genai.Content
	)
	if prompt.System != "" {
		system = append(system, genai.NewPartFromText(prompt.System))
	}

	last := prompt.lastUser()
	for i, msg := range prompt.Messages {
		if msg.Role == models.RoleSystem {
			if text := msg.Content.PlainText(); text != "" {
				system = append(system, genai.NewPartFromText(text))
			}
			continue
		}

		var parts []*genai.Part
		if i == last {
			for _, f := range prompt.Files {
				parts = append(parts, genai.NewPartFromURI(f.URI, f.MimeType))
			}
		}

		msgParts, err := geminiParts(msg.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("message %d: %w", i, err)
		}
		parts = append(parts, msgParts...)

		if i == last && prompt.Context != "" {
			parts = append(parts, genai.NewPartFromText(prompt.Context))
		}
		if len(parts) == 0 {
			continue
		}

		role := genai.Role(genai.RoleUser)
		if msg.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	if len(system) > 0 {
		cfg = &genai.GenerateContentConfig{SystemInstruction: &genai.Content{Parts: system}}
	}
	return cfg, contents, nil
}

func geminiParts(c models.Content) ([]*genai.Part, error) {
	if c.Parts == nil {
		if c.Text == "" {
			return nil, nil
		}
		return []*genai.Part{genai.NewPartFromText(c.Text)}, nil
	}

	parts := make([]*genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch {
		case p.Type == "text" && p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		case p.Type == "image" && p.Image != nil:
			data, err := base64.StdEncoding.DecodeString(p.Image.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline image: %w", err)
			}
			mime := p.Image.MimeType
			if mime == "" {
				mime = "image/png"
			}
			parts = append(parts, genai.NewPartFromBytes(data, mime))
		}
	}
	return parts, nil
}
