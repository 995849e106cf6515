package models

import (
	"bytes"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
)

// InvalidMessagesText is the plain-text body returned for a malformed messages list.
const InvalidMessagesText = "Invalid messages format"

// UnknownErrorText is the error frame written when a turn panics.
const UnknownErrorText = "Unknown error"

var (
	ErrInvalidMessages  = errors.New("invalid messages format")
	ErrUnsupportedModel = errors.New("unsupported model")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages      []Message      `json:"messages"`
	Model         string         `json:"model,omitempty" example:"gemini-2.0-flash"`
	FileURI       string         `json:"fileUri,omitempty"`
	FileMimeType  string         `json:"fileMimeType,omitempty" example:"image/png"`
	MultipleFiles []FileRef      `json:"multipleFiles,omitempty"`
	ImageSettings *ImageSettings `json:"imageSettings,omitempty"`
}

// Validate checks that at least one user message exists.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrInvalidMessages
	}
	if _, ok := r.LastUserMessage(); !ok {
		return ErrInvalidMessages
	}
	return nil
}

// LastUserMessage returns the index of the last message with role user.
func (r *ChatRequest) LastUserMessage() (int, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return i, true
		}
	}
	return -1, false
}

// Files returns the attached file references. A non-empty multipleFiles list
// takes precedence over the single fileUri/fileMimeType pair.
func (r *ChatRequest) Files() []FileRef {
	if len(r.MultipleFiles) > 0 {
		files := make([]FileRef, 0, len(r.MultipleFiles))
		for _, f := range r.MultipleFiles {
			if f.URI != "" && f.MimeType != "" {
				files = append(files, f)
			}
		}
		return files
	}
	if r.FileURI != "" && r.FileMimeType != "" {
		return []FileRef{{URI: r.FileURI, MimeType: r.FileMimeType}}
	}
	return nil
}

type FileRef struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name,omitempty"`
}

type ImageSettings struct {
	Size    string `json:"size,omitempty" example:"1024x1024"`
	Style   string `json:"style,omitempty" example:"natural"`
	Quality string `json:"quality,omitempty" example:"standard"`
	Model   string `json:"model,omitempty" example:"gpt-image-1"`
}

type Message struct {
	Role    string  `json:"role" example:"user"`
	Content Content `json:"content" swaggertype:"string"`
}

// Content is either a plain string or a list of text/image parts.
type Content struct {
	Text  string
	Parts []ContentPart
}

type ContentPart struct {
	Type  string       `json:"type"`
	Text  string       `json:"text,omitempty"`
	Image *InlineImage `json:"image,omitempty"`
}

type InlineImage struct {
	MimeType string `json:"mimeType,omitempty"`
	// Data is base64 encoded.
	Data string `json:"data"`
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return sonic.Unmarshal(data, &c.Text)
	case data[0] == '[':
		return sonic.Unmarshal(data, &c.Parts)
	default:
		return errors.New("message content must be a string or an array of parts")
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return sonic.Marshal(c.Parts)
	}
	return sonic.Marshal(c.Text)
}

// PlainText joins the text parts of the content.
func (c Content) PlainText() string {
	if c.Parts == nil {
		return c.Text
	}
	texts := make([]string, 0, len(c.Parts))
	for _, p := range c.Parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// WithText returns a copy of the content whose text is replaced, keeping image parts.
func (c Content) WithText(text string) Content {
	if c.Parts == nil {
		return Content{Text: text}
	}
	parts := []ContentPart{{Type: "text", Text: text}}
	for _, p := range c.Parts {
		if p.Type != "text" {
			parts = append(parts, p)
		}
	}
	return Content{Parts: parts}
}

// StreamChunk is one increment of a chat completion stream.
type StreamChunk struct {
	Delta string `json:"delta,omitempty"`
	Err   error  `json:"-"`
}
