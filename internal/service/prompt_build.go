package service

import (
	"slices"

	"github.com/kdduha/chatgateway/internal/chat"
	"github.com/kdduha/chatgateway/internal/models"
)

// buildPrompt turns the request into a provider prompt. The last user message
// is replaced by the classified text so control tokens never reach the model.
func (o *Orchestrator) buildPrompt(turn *Turn, intents *models.Intents, search *models.SearchOutcome) *chat.Prompt {
	req := turn.Request
	messages := slices.Clone(req.Messages)

	if i, ok := req.LastUserMessage(); ok {
		if messages[i].Content.PlainText() != intents.Message {
			messages[i].Content = messages[i].Content.WithText(intents.Message)
		}
	}

	return &chat.Prompt{
		Model:    turn.Model,
		Messages: messages,
		Files:    req.Files(),
		Context:  searchContext(o.now(), search),
	}
}
