package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/kdduha/chatgateway/internal/models"
)

var (
	textToVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:generate|create|make|produce)\s+(?:a\s+)?video\s+(?:of|showing|about)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:can you|please|could you)\s+(?:generate|create|make)\s+(?:a\s+)?video\s+(?:of|showing|about)\s+(.+)`),
		regexp.MustCompile(`(?i)video\s+(?:of|showing|about)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:animate|animation)\s+(?:of|showing)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:i want|i'd like|i need)\s+(?:you\s+)?(?:to\s+)?(?:create|make|generate)\s+(?:a\s+)?video\s+(.+)`),
		regexp.MustCompile(`(?i)(?:create|make|generate)\s+(?:a\s+)?video\s+(?:like|similar to|just like)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:create|make|generate)\s+(?:me\s+)?(?:a\s+)?video`),
		regexp.MustCompile(`(?i)(?:can you|could you|please)\s+(?:create|make|generate)\s+(?:me\s+)?(?:a\s+)?video`),
	}

	imageToVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)animate\s+(?:this|the)\s+image`),
		regexp.MustCompile(`(?i)make\s+(?:this|the)\s+image\s+move`),
		regexp.MustCompile(`(?i)turn\s+(?:this|the)\s+image\s+into\s+(?:a\s+)?video`),
		regexp.MustCompile(`(?i)create\s+(?:an?\s+)?animation\s+from\s+(?:this|the)\s+image`),
		regexp.MustCompile(`(?i)animate\s+(?:this|it)`),
		regexp.MustCompile(`(?i)make\s+(?:this|it)\s+move`),
		regexp.MustCompile(`(?i)bring\s+(?:this|the)\s+image\s+to\s+life`),
		regexp.MustCompile(`(?i)add\s+motion\s+to\s+(?:this|the)\s+image`),
	}

	videoToVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:create|make|generate)\s+(?:a\s+)?video\s+(?:like|similar to|just like|based on)\s+(?:this|it)`),
		regexp.MustCompile(`(?i)(?:i want|i'd like|i need)\s+(?:you\s+)?(?:to\s+)?(?:create|make|generate)\s+(?:a\s+)?video\s+(?:like|similar to|just like)\s+(?:this|it)`),
		regexp.MustCompile(`(?i)(?:create|make|generate)\s+(?:me\s+)?(?:a\s+)?(?:similar|new)\s+video`),
		regexp.MustCompile(`(?i)(?:can you|could you|please)\s+(?:create|make|generate)\s+(?:a\s+)?video\s+(?:like|similar to|just like)\s+(?:this|it)`),
		regexp.MustCompile(`(?i)recreate\s+(?:this\s+)?video`),
		regexp.MustCompile(`(?i)make\s+(?:me\s+)?(?:another|a new)\s+video`),
	}

	generalMotionPattern = regexp.MustCompile(`(?i)(?:create|make|generate)\s+(?:a\s+)?video|animate|animation|move|motion`)

	videoDuration     = regexp.MustCompile(`(?i)(\d+)\s*(?:second|sec|s)\s+(?:video|animation)`)
	portraitRatioHint = regexp.MustCompile(`(?i)portrait|vertical|9:16|mobile`)
	squareRatioHint   = regexp.MustCompile(`(?i)square|1:1|instagram`)
	proModelHint      = regexp.MustCompile(`(?i)high quality|best quality|\bpro\b|1080p|professional`)
	huggingFaceHint   = regexp.MustCompile(`(?i)huggingface|hunyuan|\bhf\b`)
	qualityTierHint   = regexp.MustCompile(`(?i)quality|\bbest\b|h100`)
	negativePrompt    = regexp.MustCompile(`(?i)\b(?:without|avoid|exclude)\s+(.+?)(?:[.,;]|$)`)
)

const (
	VideoModelStandard = "standard"
	VideoModelPro      = "pro"

	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
	AspectSquare    = "1:1"
)

// PatternVideoDetector recognises text-to-video and image-to-video requests.
// An uploaded image or video switches it to image-to-video matching first.
type PatternVideoDetector struct{}

func NewPatternVideoDetector() *PatternVideoDetector {
	return &PatternVideoDetector{}
}

func (d *PatternVideoDetector) DetectVideo(_ context.Context, message string, files []models.FileRef) (*models.VideoRequest, error) {
	base := videoParameters(message)

	media := uploadedMedia(files)
	if media != nil {
		patterns := imageToVideoPatterns
		if strings.HasPrefix(media.MimeType, "video/") {
			patterns = videoToVideoPatterns
		}
		if matchesAny(message, patterns) || generalMotionPattern.MatchString(message) {
			req := base
			req.Type = models.VideoImageToVideo
			req.Prompt = message
			req.ImageURI = media.URI
			return &req, nil
		}
	}

	for _, p := range textToVideoPatterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		req := base
		req.Type = models.VideoTextToVideo
		req.Prompt = message
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			req.Prompt = strings.TrimSpace(m[1])
		}
		return &req, nil
	}
	return nil, nil
}

func videoParameters(message string) models.VideoRequest {
	req := models.VideoRequest{
		Duration:    5,
		AspectRatio: AspectLandscape,
		Model:       VideoModelStandard,
		Backend:     models.VideoBackendReplicate,
		Tier:        models.VideoTierFast,
	}

	if m := videoDuration.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n == 10 {
			req.Duration = 10
		}
	}

	switch {
	case portraitRatioHint.MatchString(message):
		req.AspectRatio = AspectPortrait
	case squareRatioHint.MatchString(message):
		req.AspectRatio = AspectSquare
	}

	if proModelHint.MatchString(message) {
		req.Model = VideoModelPro
	}

	if huggingFaceHint.MatchString(message) {
		req.Backend = models.VideoBackendHuggingFace
		if qualityTierHint.MatchString(message) {
			req.Tier = models.VideoTierQuality
		}
	}

	if m := negativePrompt.FindStringSubmatch(message); m != nil {
		req.NegativePrompt = strings.TrimSpace(m[1])
	}
	return req
}

func uploadedMedia(files []models.FileRef) *models.FileRef {
	for i := range files {
		mt := files[i].MimeType
		if strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "video/") {
			return &files[i]
		}
	}
	return nil
}
