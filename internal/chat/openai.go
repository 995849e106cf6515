package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const openAIHost = "api.openai.com"

// OpenAIStreamer streams from any OpenAI-compatible chat completions API.
type OpenAIStreamer struct {
	client      openai.Client
	keyRequired bool
	hasKey      bool
}

func NewOpenAIStreamer(cfg config.OpenAIConfig, opts ...option.RequestOption) *OpenAIStreamer {
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	// Self-hosted compatible servers usually run without a key.
	keyRequired := cfg.BaseURL == ""
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host == openAIHost {
		keyRequired = true
	}

	return &OpenAIStreamer{
		client:      openai.NewClient(append(base, opts...)...),
		keyRequired: keyRequired,
		hasKey:      cfg.APIKey != "",
	}
}

func (o *OpenAIStreamer) StreamChat(ctx context.Context, prompt *Prompt) (<-chan models.StreamChunk, error) {
	if o.keyRequired && !o.hasKey {
		return nil, &models.MissingCredentialError{
			Capability: "OpenAI chat", Env: "OPENAI_API_KEY", Where: "https://platform.openai.com/api-keys",
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(prompt.Model),
		Messages: openAIMessages(prompt),
	}

	return forward(ctx, func(send func(models.StreamChunk) bool) {
		stream := o.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !send(models.StreamChunk{Delta: delta}) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			send(models.StreamChunk{Err: err})
		}
	}), nil
}

func openAIMessages(prompt *Prompt) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}

	last := prompt.lastUser()
	for i, msg := range prompt.Messages {
		switch msg.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content.PlainText()))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content.PlainText()))
		default:
			parts := openAIParts(msg.Content)
			if i == last {
				// Provider file URIs are opaque to other vendors; mention them instead.
				for _, f := range prompt.Files {
					parts = append(parts, openai.TextContentPart(fmt.Sprintf("Attached file: %s (%s)", f.URI, f.MimeType)))
				}
				if prompt.Context != "" {
					parts = append(parts, openai.TextContentPart(prompt.Context))
				}
			}
			messages = append(messages, openai.UserMessage(parts))
		}
	}
	return messages
}

func openAIParts(c models.Content) []openai.ChatCompletionContentPartUnionParam {
	if c.Parts == nil {
		return []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(c.Text)}
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch {
		case p.Type == "text" && p.Text != "":
			parts = append(parts, openai.TextContentPart(p.Text))
		case p.Type == "image" && p.Image != nil:
			mime := p.Image.MimeType
			if mime == "" {
				mime = "image/png"
			}
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: fmt.Sprintf("data:%s;base64,%s", mime, p.Image.Data),
			}))
		}
	}
	return parts
}
