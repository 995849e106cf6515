// Package intent classifies the last user message into the capabilities a
// request needs: web search, image, video or speech generation.
package intent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kdduha/chatgateway/internal/models"
	"github.com/sirupsen/logrus"
)

// ForceSearchToken marks programmatic follow-up questions that must search.
const ForceSearchToken = "[FORCE_WEB_SEARCH]"

type SearchDetector interface {
	DetectSearch(message string) *models.SearchIntent
}

type ImageDetector interface {
	DetectImage(message, preferredModel string) *models.ImageRequest
}

type VideoDetector interface {
	DetectVideo(ctx context.Context, message string, files []models.FileRef) (*models.VideoRequest, error)
}

type TTSDetector interface {
	DetectTTS(message string) *models.TTSRequest
}

type AnalysisDetector interface {
	IsAnalysisOnly(message string) bool
}

// Input is what the resolver needs from one request.
type Input struct {
	Message       string
	Model         string
	Files         []models.FileRef
	ImageSettings *models.ImageSettings
}

type Resolver struct {
	analysis AnalysisDetector
	search   SearchDetector
	image    ImageDetector
	video    VideoDetector
	tts      TTSDetector

	builtinSearchModels []string
}

type Option func(*Resolver)

func WithSearchDetector(d SearchDetector) Option     { return func(r *Resolver) { r.search = d } }
func WithImageDetector(d ImageDetector) Option       { return func(r *Resolver) { r.image = d } }
func WithVideoDetector(d VideoDetector) Option       { return func(r *Resolver) { r.video = d } }
func WithTTSDetector(d TTSDetector) Option           { return func(r *Resolver) { r.tts = d } }
func WithAnalysisDetector(d AnalysisDetector) Option { return func(r *Resolver) { r.analysis = d } }

// NewResolver wires the keyword detectors by default. builtinSearchModels
// lists chat models that do their own retrieval.
func NewResolver(builtinSearchModels []string, opts ...Option) *Resolver {
	r := &Resolver{
		analysis:            NewReverseEngineeringMatcher(),
		search:              NewKeywordSearchDetector(nil),
		image:               NewKeywordImageDetector(),
		video:               NewPatternVideoDetector(),
		tts:                 NewPatternTTSDetector(),
		builtinSearchModels: builtinSearchModels,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the detectors in precedence order. A detector that panics or
// fails is logged and counts as no match.
func (r *Resolver) Resolve(ctx context.Context, logger *logrus.Entry, in Input) models.Intents {
	forced := strings.Contains(in.Message, ForceSearchToken)
	message := in.Message
	if forced {
		message = strings.TrimSpace(strings.ReplaceAll(message, ForceSearchToken, ""))
	}

	out := models.Intents{Message: message}

	out.AnalysisOnly = guard(logger, "reverse_engineering", func() (bool, error) {
		return r.analysis.IsAnalysisOnly(message), nil
	})

	if !slices.Contains(r.builtinSearchModels, in.Model) {
		out.Search = guard(logger, "web_search", func() (*models.SearchIntent, error) {
			return r.search.DetectSearch(message), nil
		})
		if forced {
			if out.Search == nil {
				out.Search = &models.SearchIntent{Query: message, Type: models.SearchFactual}
			}
			out.Search.Forced = true
		}
	}

	if out.AnalysisOnly {
		logger.Debug("analysis request, generation detectors skipped")
		return out
	}

	preferred := ""
	if in.ImageSettings != nil {
		preferred = in.ImageSettings.Model
	}
	out.Image = guard(logger, "image_generation", func() (*models.ImageRequest, error) {
		return r.image.DetectImage(message, preferred), nil
	})
	ApplyImageSettings(out.Image, message, in.ImageSettings)

	out.Video = guard(logger, "video_generation", func() (*models.VideoRequest, error) {
		return r.video.DetectVideo(ctx, message, in.Files)
	})

	out.TTS = guard(logger, "tts", func() (*models.TTSRequest, error) {
		return r.tts.DetectTTS(message), nil
	})

	return out
}

func guard[T any](logger *logrus.Entry, detector string, fn func() (T, error)) (out T) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithFields(logrus.Fields{
				"detector": detector,
				"panic":    fmt.Sprint(rec),
			}).Error("intent detector panicked")
			var zero T
			out = zero
		}
	}()

	res, err := fn()
	if err != nil {
		logger.WithError(err).WithField("detector", detector).Warn("intent detector failed")
		var zero T
		return zero
	}
	return res
}
