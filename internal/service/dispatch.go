package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kdduha/chatgateway/internal/intent"
	"github.com/kdduha/chatgateway/internal/metrics"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/kdduha/chatgateway/internal/stream"
	"github.com/sirupsen/logrus"
)

// pending is a generator call running in the background. The outcome is
// readable once done is closed.
type pending[T any] struct {
	done chan struct{}
	out  models.Outcome[T]
}

// generatorPanicText is reported in the payload of a generator that panicked.
const generatorPanicText = "Generation failed due to an internal error. Please try again."

// dispatch runs call in the background. failed builds the payload reported
// when call panics.
func dispatch[T any](
	ctx context.Context,
	logger *logrus.Entry,
	capability string,
	call func(context.Context) models.Outcome[T],
	failed func(msg string) T,
) *pending[T] {
	p := &pending[T]{done: make(chan struct{})}

	go func() {
		defer close(p.done)

		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithFields(logrus.Fields{
					"capability": capability,
					"panic":      fmt.Sprint(rec),
				}).Error("generator panicked")
				p.out = models.Failed(failed(generatorPanicText))
			}
			metrics.GenerationDuration(capability, time.Since(start))
			metrics.GenerationOutcome(capability, string(p.out.Status))
		}()

		p.out = call(ctx)
	}()

	return p
}

// awaitOutcome blocks until p completes. It gives up when the request ends
// or the client can no longer receive the marker.
func awaitOutcome[T any](ctx context.Context, w *stream.Writer, p *pending[T]) (models.Outcome[T], bool) {
	if !w.Accepting() {
		return models.Outcome[T]{}, false
	}
	select {
	case <-p.done:
		return p.out, true
	case <-ctx.Done():
		return models.Outcome[T]{}, false
	}
}

// skip records a capability left out for a missing credential. Nothing is
// written to the stream for it.
func skip(logger *logrus.Entry, capability string, err error) {
	logger.WithError(err).WithField("capability", capability).Info("capability skipped")
	metrics.GenerationOutcome(capability, string(models.StatusSkipped))
}

func (o *Orchestrator) startImage(
	ctx context.Context,
	logger *logrus.Entry,
	intents *models.Intents,
) (*pending[models.ImageGeneration], string) {
	req := intents.Image
	if req == nil || o.gen.Image == nil {
		return nil, ""
	}
	if err := o.gen.Image.Ready(req.Model); err != nil {
		skip(logger, capabilityImage, err)
		return nil, ""
	}

	placeholderID := o.newID()
	logger.WithFields(logrus.Fields{
		"model":         req.Model,
		"placeholderId": placeholderID,
	}).Info("image generation dispatched")

	return dispatch(ctx, logger, capabilityImage, func(ctx context.Context) models.Outcome[models.ImageGeneration] {
		return o.gen.Image.Generate(ctx, req, intents.Message, placeholderID)
	}, func(msg string) models.ImageGeneration {
		return models.ImageGeneration{Prompt: req.Prompt, Model: req.Model, PlaceholderID: placeholderID, Error: msg}
	}), placeholderID
}

func (o *Orchestrator) startVideo(ctx context.Context, logger *logrus.Entry, intents *models.Intents) *pending[models.VideoGeneration] {
	req := intents.Video
	if req == nil || o.gen.Video == nil {
		return nil
	}
	if err := o.gen.Video.Ready(); err != nil {
		skip(logger, capabilityVideo, err)
		return nil
	}

	logger.WithFields(logrus.Fields{
		"type":    req.Type,
		"backend": req.Backend,
	}).Info("video generation dispatched")

	return dispatch(ctx, logger, capabilityVideo, func(ctx context.Context) models.Outcome[models.VideoGeneration] {
		return o.gen.Video.Generate(ctx, req)
	}, func(msg string) models.VideoGeneration {
		return models.VideoGeneration{Status: models.VideoStatusFailed, Prompt: req.Prompt, Error: msg}
	})
}

func (o *Orchestrator) startSpeech(
	ctx context.Context,
	logger *logrus.Entry,
	intents *models.Intents,
) *pending[models.TTSGeneration] {
	if intents.TTS == nil || o.gen.Speech == nil {
		return nil
	}
	if err := o.gen.Speech.Ready(); err != nil {
		skip(logger, capabilitySpeech, err)
		return nil
	}

	content := intent.ExtractTTSContent(intents.Message)
	content.MultiSpeaker = content.MultiSpeaker || intents.TTS.MultiSpeaker
	logger.WithField("multiSpeaker", content.MultiSpeaker).Info("speech generation dispatched")

	return dispatch(ctx, logger, capabilitySpeech, func(ctx context.Context) models.Outcome[models.TTSGeneration] {
		return o.gen.Speech.Generate(ctx, content, intents.Message)
	}, func(msg string) models.TTSGeneration {
		return models.TTSGeneration{Error: msg, OriginalText: intents.Message}
	})
}

// runSearch is awaited before the stream opens so both search markers can
// be written with known results.
func (o *Orchestrator) runSearch(ctx context.Context, logger *logrus.Entry, req *models.SearchIntent) models.SearchOutcome {
	if o.gen.Search == nil {
		return models.SearchOutcome{Query: req.Query}
	}

	start := time.Now()
	out := o.gen.Search.Search(ctx, req)

	status := models.StatusSuccess
	if out.Answer == nil {
		status = models.StatusFailure
	}
	metrics.GenerationDuration(capabilitySearch, time.Since(start))
	metrics.GenerationOutcome(capabilitySearch, string(status))

	logger.WithFields(logrus.Fields{
		"query":      out.Query,
		"forced":     req.Forced,
		"hasResults": out.Answer != nil,
		"hasError":   out.Error != "",
	}).Info("web search finished")
	return out
}
