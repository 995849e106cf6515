// Package service runs one chat turn: it resolves intents, dispatches the
// generators and multiplexes their results with the chat tokens.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kdduha/chatgateway/internal/chat"
	"github.com/kdduha/chatgateway/internal/intent"
	"github.com/kdduha/chatgateway/internal/metrics"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/kdduha/chatgateway/internal/stream"
	"github.com/sirupsen/logrus"
)

const (
	capabilitySearch = "web_search"
	capabilityImage  = "image"
	capabilityVideo  = "video"
	capabilitySpeech = "tts"
	capabilityChat   = "chat"
)

// Write steps, used in logs and dropped-frame metrics.
const (
	stepSearchStarted   = "web search indicator"
	stepSearchCompleted = "web search completed"
	stepImageAck        = "image response"
	stepImageStarted    = "image generation started marker"
	stepImageCompleted  = "image generation marker"
	stepVideoAck        = "video response"
	stepVideoStarted    = "video generation marker"
	stepChatToken       = "chat token"
	stepChatError       = "chat error"
	stepSpeechCompleted = "tts generation marker"
	stepFatal           = "fatal error"
)

type IntentResolver interface {
	Resolve(ctx context.Context, logger *logrus.Entry, in intent.Input) models.Intents
}

type ChatRouter interface {
	Resolve(model string) (chat.Streamer, string, error)
}

type ImageGenerator interface {
	Ready(model string) error
	Generate(ctx context.Context, req *models.ImageRequest, originalPrompt, placeholderID string) models.Outcome[models.ImageGeneration]
}

type VideoGenerator interface {
	Ready() error
	Generate(ctx context.Context, req *models.VideoRequest) models.Outcome[models.VideoGeneration]
}

type SpeechGenerator interface {
	Ready() error
	Generate(ctx context.Context, content models.TTSContent, originalText string) models.Outcome[models.TTSGeneration]
}

type WebSearcher interface {
	Search(ctx context.Context, intent *models.SearchIntent) models.SearchOutcome
}

// Generators groups the downstream capability clients.
type Generators struct {
	Image  ImageGenerator
	Video  VideoGenerator
	Speech SpeechGenerator
	Search WebSearcher
}

type Orchestrator struct {
	resolver    IntentResolver
	router      ChatRouter
	gen         Generators
	chatTimeout time.Duration

	now   func() time.Time
	newID func() string
}

func NewOrchestrator(resolver IntentResolver, router ChatRouter, gen Generators, chatTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		resolver:    resolver,
		router:      router,
		gen:         gen,
		chatTimeout: chatTimeout,
		now:         time.Now,
		newID:       func() string { return "img_" + uuid.NewString() },
	}
}

// Turn is a validated request bound to the streamer serving its model.
type Turn struct {
	Request  *models.ChatRequest
	Model    string
	streamer chat.Streamer
}

// Prepare validates req and resolves its chat model. Errors here happen
// before any frame is written.
func (o *Orchestrator) Prepare(req *models.ChatRequest) (*Turn, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	streamer, model, err := o.router.Resolve(req.Model)
	if err != nil {
		return nil, err
	}
	return &Turn{Request: req, Model: model, streamer: streamer}, nil
}

// Run writes the whole response for turn to w. It always ends with the
// finish frame, whatever happens on the way.
func (o *Orchestrator) Run(ctx context.Context, logger *logrus.Entry, turn *Turn, w *stream.Writer) {
	defer w.Finish()
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithField("panic", fmt.Sprint(rec)).Error("chat turn panicked")
			w.Error(stepFatal, models.UnknownErrorText)
		}
	}()

	req := turn.Request
	idx, _ := req.LastUserMessage()
	message := req.Messages[idx].Content.PlainText()

	intents := o.resolver.Resolve(ctx, logger, intent.Input{
		Message:       message,
		Model:         turn.Model,
		Files:         req.Files(),
		ImageSettings: req.ImageSettings,
	})
	logger = logger.WithField("intents", intents.Kinds())
	logger.Info("intents resolved")

	// Generators outlive a disconnected client; their side effects stay valid.
	genCtx := context.WithoutCancel(ctx)
	image, placeholderID := o.startImage(genCtx, logger, &intents)
	video := o.startVideo(genCtx, logger, &intents)
	speech := o.startSpeech(genCtx, logger, &intents)

	var search *models.SearchOutcome
	if intents.Search != nil {
		out := o.runSearch(ctx, logger, intents.Search)
		search = &out
		w.Marker(stepSearchStarted, stream.MarkerWebSearchStarted, search.Started())
		w.Marker(stepSearchCompleted, stream.MarkerWebSearchCompleted, search.Completed())
	}

	if image != nil && video == nil {
		o.writeImageStarted(logger, w, &intents, placeholderID)
	} else {
		if video != nil {
			o.writeVideo(ctx, w, &intents, video)
		}
		o.streamChat(ctx, logger, w, turn.streamer, o.buildPrompt(turn, &intents, search))
	}

	if image != nil {
		if out, ok := awaitOutcome(ctx, w, image); ok {
			w.Marker(stepImageCompleted, stream.MarkerImageGenerationCompleted, out.Value)
		}
	}
	if speech != nil {
		if out, ok := awaitOutcome(ctx, w, speech); ok {
			w.Marker(stepSpeechCompleted, stream.MarkerTTSGenerationCompleted, out.Value)
		}
	}
}

// writeImageStarted answers an image-only request without the chat model.
func (o *Orchestrator) writeImageStarted(logger *logrus.Entry, w *stream.Writer, intents *models.Intents, placeholderID string) {
	logger.Debug("image-only request, chat model skipped")

	req := intents.Image
	w.Text(stepImageAck, intent.ImageAck(req))
	w.Marker(stepImageStarted, stream.MarkerImageGenerationStarted, models.ImageProgress{
		PlaceholderID: placeholderID,
		Prompt:        req.Prompt,
		Model:         req.Model,
		Quality:       req.Quality,
		Style:         req.Style,
		Size:          req.Size,
	})
}

func (o *Orchestrator) writeVideo(ctx context.Context, w *stream.Writer, intents *models.Intents, video *pending[models.VideoGeneration]) {
	out, ok := awaitOutcome(ctx, w, video)
	if !ok {
		return
	}
	if out.Status == models.StatusSuccess {
		w.Text(stepVideoAck, intent.VideoAck(intents.Video))
	}
	w.Marker(stepVideoStarted, stream.MarkerVideoGenerationStarted, out.Value)
}

func (o *Orchestrator) streamChat(ctx context.Context, logger *logrus.Entry, w *stream.Writer, streamer chat.Streamer, prompt *chat.Prompt) {
	chatCtx, cancel := context.WithTimeout(ctx, o.chatTimeout)
	defer cancel()

	start := time.Now()
	status := models.StatusSuccess
	defer func() {
		metrics.GenerationDuration(capabilityChat, time.Since(start))
		metrics.GenerationOutcome(capabilityChat, string(status))
	}()

	chunks, err := streamer.StreamChat(chatCtx, prompt)
	if err != nil {
		status = models.StatusFailure
		logger.WithError(err).Error("chat stream failed to start")
		w.Error(stepChatError, classifyError(err))
		return
	}

	for chunk := range chunks {
		if chunk.Err != nil {
			status = models.StatusFailure
			logger.WithError(chunk.Err).Error("chat stream failed")
			w.Error(stepChatError, classifyError(chunk.Err))
			continue
		}
		if chunk.Delta == "" {
			continue
		}
		if !w.Text(stepChatToken, chunk.Delta) && !w.Accepting() {
			logger.Info("client went away, chat stream cancelled")
			return
		}
	}
}
