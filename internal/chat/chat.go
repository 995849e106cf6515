// Package chat streams completions from the supported chat model providers.
package chat

import (
	"context"
	"fmt"
	"slices"

	"github.com/kdduha/chatgateway/internal/models"
)

// Prompt is one chat turn as sent to a provider.
type Prompt struct {
	Model string
	// System is an optional instruction placed before the conversation.
	System   string
	Messages []models.Message
	// Files are attached to the last user message.
	Files []models.FileRef
	// Context is appended to the last user message as an extra text part.
	Context string
}

// lastUser returns the index of the message that carries files and context.
func (p *Prompt) lastUser() int {
	for i := len(p.Messages) - 1; i >= 0; i-- {
		if p.Messages[i].Role == models.RoleUser {
			return i
		}
	}
	return -1
}

type Streamer interface {
	// StreamChat starts a completion. The channel is closed when the stream
	// ends; a chunk with Err set is the last one sent.
	StreamChat(ctx context.Context, prompt *Prompt) (<-chan models.StreamChunk, error)
}

// Router maps model names to the streamer that serves them.
type Router struct {
	defaultModel string
	streamers    map[string]Streamer
	order        []string
}

func NewRouter(defaultModel string) *Router {
	return &Router{
		defaultModel: defaultModel,
		streamers:    make(map[string]Streamer),
	}
}

// Register serves every name in modelNames with s. Later registrations win.
func (r *Router) Register(s Streamer, modelNames ...string) {
	for _, name := range modelNames {
		if _, ok := r.streamers[name]; !ok {
			r.order = append(r.order, name)
		}
		r.streamers[name] = s
	}
}

// Resolve returns the streamer and the effective model name. An empty model
// selects the default.
func (r *Router) Resolve(model string) (Streamer, string, error) {
	if model == "" {
		model = r.defaultModel
	}
	s, ok := r.streamers[model]
	if !ok {
		return nil, model, fmt.Errorf("%w: %s", models.ErrUnsupportedModel, model)
	}
	return s, model, nil
}

func (r *Router) Models() []string {
	return slices.Clone(r.order)
}

// forward runs produce in a goroutine and returns the channel it feeds.
// send blocks until the consumer reads or ctx is done.
func forward(ctx context.Context, produce func(send func(models.StreamChunk) bool)) <-chan models.StreamChunk {
	ch := make(chan models.StreamChunk, 1)

	go func() {
		defer close(ch)

		sendOrStop := func(msg models.StreamChunk) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		produce(sendOrStop)
	}()

	return ch
}
