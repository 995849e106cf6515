package intent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kdduha/chatgateway/internal/models"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() (*logrus.Entry, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return logrus.NewEntry(logger), hook
}

type countingImage struct{ calls int }

func (c *countingImage) DetectImage(string, string) *models.ImageRequest {
	c.calls++
	return &models.ImageRequest{Prompt: "x"}
}

type countingVideo struct{ calls int }

func (c *countingVideo) DetectVideo(context.Context, string, []models.FileRef) (*models.VideoRequest, error) {
	c.calls++
	return &models.VideoRequest{}, nil
}

type countingTTS struct{ calls int }

func (c *countingTTS) DetectTTS(string) *models.TTSRequest {
	c.calls++
	return &models.TTSRequest{}
}

type panickingSearch struct{}

func (panickingSearch) DetectSearch(string) *models.SearchIntent { panic("regex exploded") }

type failingVideo struct{}

func (failingVideo) DetectVideo(context.Context, string, []models.FileRef) (*models.VideoRequest, error) {
	return nil, errors.New("file lookup failed")
}

func TestResolverReverseEngineeringSuppressesGenerators(t *testing.T) {
	img, vid, tts := &countingImage{}, &countingVideo{}, &countingTTS{}
	r := NewResolver(nil, WithImageDetector(img), WithVideoDetector(vid), WithTTSDetector(tts))
	logger, _ := testLogger()

	messages := []string{
		"Please reverse engineer this video and then animate this image",
		"**Reverse Engineering Analysis** of the picture of a cat, read this aloud",
		"Can you recreate this content? Generate an image of it too",
	}
	for _, msg := range messages {
		out := r.Resolve(context.Background(), logger, Input{Message: msg, Model: "gemini-2.0-flash"})
		assert.True(t, out.AnalysisOnly, msg)
		assert.Nil(t, out.Image)
		assert.Nil(t, out.Video)
		assert.Nil(t, out.TTS)
	}
	assert.Zero(t, img.calls)
	assert.Zero(t, vid.calls)
	assert.Zero(t, tts.calls)
}

func TestResolverReverseEngineeringKeepsSearch(t *testing.T) {
	r := NewResolver(nil)
	logger, _ := testLogger()

	out := r.Resolve(context.Background(), logger, Input{Message: "[FORCE_WEB_SEARCH] reverse engineer the latest viral trend"})
	assert.True(t, out.AnalysisOnly)
	require.NotNil(t, out.Search)
	assert.True(t, out.Search.Forced)
}

func TestResolverForceSearchTokenStripped(t *testing.T) {
	r := NewResolver(nil)
	logger, _ := testLogger()

	out := r.Resolve(context.Background(), logger, Input{Message: "[FORCE_WEB_SEARCH] Tell me more about penguins"})
	assert.Equal(t, "Tell me more about penguins", out.Message)
	require.NotNil(t, out.Search)
	assert.True(t, out.Search.Forced)
	assert.NotContains(t, out.Search.Query, ForceSearchToken)
}

func TestResolverBuiltinSearchModelSkipsSearch(t *testing.T) {
	r := NewResolver([]string{"Claude Sonnet 4"})
	logger, _ := testLogger()

	out := r.Resolve(context.Background(), logger, Input{Message: "latest news about Mars", Model: "Claude Sonnet 4"})
	assert.Nil(t, out.Search)

	out = r.Resolve(context.Background(), logger, Input{Message: "latest news about Mars", Model: "gemini-2.0-flash"})
	assert.NotNil(t, out.Search)
}

func TestResolverDetectorFailuresAreNoMatch(t *testing.T) {
	r := NewResolver(nil, WithSearchDetector(panickingSearch{}), WithVideoDetector(failingVideo{}))
	logger, hook := testLogger()

	var out models.Intents
	require.NotPanics(t, func() {
		out = r.Resolve(context.Background(), logger, Input{Message: "what is the latest news"})
	})
	assert.Nil(t, out.Search)
	assert.Nil(t, out.Video)

	var levels []logrus.Level
	for _, e := range hook.AllEntries() {
		levels = append(levels, e.Level)
	}
	assert.Contains(t, levels, logrus.ErrorLevel)
	assert.Contains(t, levels, logrus.WarnLevel)
}

func TestResolverScenarios(t *testing.T) {
	r := NewResolver(nil)
	logger, _ := testLogger()
	ctx := context.Background()

	image := r.Resolve(ctx, logger, Input{
		Message:       "Generate an image of a red bicycle",
		Model:         "gemini-2.0-flash",
		ImageSettings: &models.ImageSettings{Size: "1024x1024", Style: "natural", Quality: "standard"},
	})
	require.NotNil(t, image.Image)
	assert.Nil(t, image.Video)
	assert.Nil(t, image.TTS)
	assert.Nil(t, image.Search)
	assert.Equal(t, "a red bicycle", image.Image.Prompt)
	assert.Equal(t, models.ImageModelGPTImage, image.Image.Model)
	assert.Equal(t, "natural", image.Image.Style)
	assert.Equal(t, "standard", image.Image.Quality)

	weather := r.Resolve(ctx, logger, Input{Message: "What's the weather in Tokyo today?", Model: "gemini-2.0-flash"})
	require.NotNil(t, weather.Search)
	assert.Equal(t, models.SearchCurrentEvents, weather.Search.Type)
	assert.Equal(t, "day", weather.Search.RecencyFilter)
	assert.Nil(t, weather.Image)

	script := r.Resolve(ctx, logger, Input{Message: "[S1] Hi! [S2] Hello back!", Model: "gemini-2.0-flash"})
	require.NotNil(t, script.TTS)
	assert.True(t, script.TTS.MultiSpeaker)
	assert.Nil(t, script.Image)
	assert.Nil(t, script.Video)
	assert.Nil(t, script.Search)
}

func TestApplyImageSettingsPerField(t *testing.T) {
	settings := &models.ImageSettings{Size: "1024x1024", Style: "natural", Quality: "standard"}

	req := &models.ImageRequest{Size: models.ImageSizeLandscape, Style: models.ImageStyleVivid, Quality: models.ImageQualityHD}
	ApplyImageSettings(req, "a wide landscape shot of the alps", settings)
	assert.Equal(t, models.ImageSizeLandscape, req.Size)
	assert.Equal(t, "natural", req.Style)
	assert.Equal(t, "standard", req.Quality)

	req = &models.ImageRequest{Size: models.ImageSizeSquare, Style: models.ImageStyleVivid, Quality: models.ImageQualityHD}
	ApplyImageSettings(req, "a vivid hd poster", settings)
	assert.Equal(t, "1024x1024", req.Size)
	assert.Equal(t, models.ImageStyleVivid, req.Style)
	assert.Equal(t, models.ImageQualityHD, req.Quality)

	assert.NotPanics(t, func() { ApplyImageSettings(nil, "x", settings) })
}

func TestKeywordImageDetector(t *testing.T) {
	d := NewKeywordImageDetector()

	assert.Nil(t, d.DetectImage("how are you today?", ""))

	req := d.DetectImage("Please use flux to draw a portrait photo of a fox", "")
	require.NotNil(t, req)
	assert.Equal(t, models.ImageModelFluxFast, req.Model)
	assert.Equal(t, models.ImageQualityStandard, req.Quality)
	assert.Equal(t, models.ImageSizePortrait, req.Size)

	req = d.DetectImage("create an image of a lighthouse", models.ImageModelKontextMax)
	require.NotNil(t, req)
	assert.Equal(t, models.ImageModelKontextMax, req.Model)
	assert.Equal(t, "a lighthouse", req.Prompt)
}

func TestKeywordSearchDetector(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	d := NewKeywordSearchDetector(now)

	assert.Nil(t, d.DetectSearch("generate a dialogue between two robots"))
	assert.Nil(t, d.DetectSearch("hello there"))

	s := d.DetectSearch("latest iphone pricing")
	require.NotNil(t, s)
	assert.Equal(t, models.SearchCurrentEvents, s.Type)
	assert.Equal(t, "week", s.RecencyFilter)
	assert.True(t, s.Temporal.RequiresFreshness)
	assert.Equal(t, "latest iphone pricing", s.EnhancedQuery)

	s = d.DetectSearch("kubernetes install guide on reddit")
	require.NotNil(t, s)
	assert.Equal(t, models.SearchTechnical, s.Type)
	assert.Equal(t, "year", s.RecencyFilter)
	assert.Equal(t, []string{"reddit.com"}, s.DomainFilter)
	assert.Equal(t, "kubernetes install guide on reddit current 2026", s.EnhancedQuery)

	s = d.DetectSearch("peer-reviewed research on sleep")
	require.NotNil(t, s)
	assert.True(t, s.Academic)
	assert.Equal(t, models.SearchResearch, s.Type)
}

func TestPatternVideoDetector(t *testing.T) {
	d := NewPatternVideoDetector()
	ctx := context.Background()

	req, err := d.DetectVideo(ctx, "Create a 10 second video of a cat surfing, vertical, without text", nil)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, models.VideoTextToVideo, req.Type)
	assert.Equal(t, 10, req.Duration)
	assert.Equal(t, AspectPortrait, req.AspectRatio)
	assert.Equal(t, "text", req.NegativePrompt)
	assert.Equal(t, models.VideoBackendReplicate, req.Backend)

	files := []models.FileRef{{URI: "files/abc", MimeType: "image/jpeg"}}
	req, err = d.DetectVideo(ctx, "animate this image with hunyuan at best quality", files)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, models.VideoImageToVideo, req.Type)
	assert.Equal(t, "files/abc", req.ImageURI)
	assert.Equal(t, models.VideoBackendHuggingFace, req.Backend)
	assert.Equal(t, models.VideoTierQuality, req.Tier)

	req, err = d.DetectVideo(ctx, "describe this picture", files)
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestExtractTTSContent(t *testing.T) {
	c := ExtractTTSContent("read this aloud: the quick brown fox")
	assert.Equal(t, "the quick brown fox", c.Text)
	assert.False(t, c.MultiSpeaker)
	assert.Equal(t, VoiceDefault, c.VoiceName)

	c = ExtractTTSContent("[S1] Hi! [S2] Hello back!")
	assert.True(t, c.MultiSpeaker)
	assert.False(t, c.GenerateScript)
	assert.Equal(t, VoiceMultiSpeaker, c.VoiceName)

	c = ExtractTTSContent("create a dialogue between a chef and a critic")
	assert.True(t, c.MultiSpeaker)
	assert.True(t, c.GenerateScript)
}

func TestCannedResponses(t *testing.T) {
	ack := ImageAck(&models.ImageRequest{Model: models.ImageModelGPTImage, Prompt: "a red bicycle"})
	assert.Contains(t, ack, "**GPT-Image-1**")
	assert.Contains(t, ack, `*"a red bicycle"*`)

	ack = VideoAck(&models.VideoRequest{
		Type: models.VideoTextToVideo, Prompt: "waves", Duration: 5,
		AspectRatio: AspectLandscape, Model: VideoModelStandard, Backend: models.VideoBackendReplicate,
	})
	assert.True(t, strings.HasPrefix(ack, `I'll generate a 5-second video of "waves"`))
	assert.Contains(t, ack, "Kling v1.6 Standard")
	assert.Contains(t, ack, "Landscape (16:9)")
}
