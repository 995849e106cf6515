package intent

import (
	"regexp"
	"strings"

	"github.com/kdduha/chatgateway/internal/models"
)

const imageNouns = `(?:image|picture|photo|illustration|artwork|art|visual|graphic|drawing|painting|sketch)`

var (
	imageKeywords = []string{
		"generate image", "create image", "make image", "draw", "paint", "illustrate",
		"generate a picture", "create a picture", "make a picture",
		"generate an image", "create an image", "make an image",
		"visualize", "render", "design", "sketch",
		"photo of", "picture of", "illustration of", "artwork of",
		"create art", "generate art", "make art",
		"flux", "dall-e", "gpt-image", "wavespeed",
	}

	imagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:generate|create|make|draw|paint|illustrate|render|design|sketch)\s+(?:a|an|the)?\s*` + imageNouns),
		regexp.MustCompile(`(?i)` + imageNouns + `\s+of\s+`),
		regexp.MustCompile(`(?i)(?:can you|could you|please|I want|I need|I'd like)\s+.*` + imageNouns),
		regexp.MustCompile(`(?i)(?:show me|give me|create for me|make for me)\s+.*` + imageNouns),
		regexp.MustCompile(`(?i)^` + imageNouns + `:\s*`),
		regexp.MustCompile(`(?i)using\s+(?:flux|dall-e|gpt-image|wavespeed|replicate)`),
	}

	imagePromptPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:please\s+)?(?:can you|could you|I want|I need|I'd like|I would like)\s+(?:to\s+)?(?:generate|create|make|draw|paint|illustrate|render|design|sketch)\s+(?:a|an|the)?\s*` + imageNouns + `\s+(?:of|showing|depicting|that shows)?\s*`),
		regexp.MustCompile(`(?i)^(?:generate|create|make|draw|paint|illustrate|render|design|sketch)\s+(?:a|an|the)?\s*` + imageNouns + `\s+(?:of|showing|depicting|that shows)?\s*`),
		regexp.MustCompile(`(?i)^` + imageNouns + `:\s*`),
		regexp.MustCompile(`(?i)^(?:show me|give me|create for me|make for me)\s+(?:a|an|the)?\s*`),
	}

	imageSubject        = regexp.MustCompile(`(?i)(?:of|showing|depicting|that shows|with|featuring)\s+(.+)`)
	trailingPunct       = regexp.MustCompile(`[.!?]+$`)
	fastModelHint       = regexp.MustCompile(`(?i)\b(?:flux|wavespeed|fast)\b`)
	kontextProHint      = regexp.MustCompile(`(?i)\bkontext pro\b`)
	kontextMaxHint      = regexp.MustCompile(`(?i)\bkontext max\b`)
	standardModelHint   = regexp.MustCompile(`(?i)\b(?:standard quality|quick)\b`)
	naturalStyleHint    = regexp.MustCompile(`(?i)\b(?:natural|realistic|photorealistic)\b`)
	landscapeSizeHint   = regexp.MustCompile(`(?i)\b(?:landscape|wide|horizontal)\b`)
	portraitSizeHint    = regexp.MustCompile(`(?i)\b(?:portrait|tall|vertical)\b`)
	sizeOverrideHint    = regexp.MustCompile(`(?i)\b(?:landscape|portrait|square|wide|tall|horizontal|vertical)\b`)
	styleOverrideHint   = regexp.MustCompile(`(?i)\b(?:natural|realistic|photorealistic|vivid)\b`)
	qualityOverrideHint = regexp.MustCompile(`(?i)\b(?:standard|hd|high|quality)\b`)
)

// KeywordImageDetector recognises text-to-image requests.
type KeywordImageDetector struct{}

func NewKeywordImageDetector() *KeywordImageDetector {
	return &KeywordImageDetector{}
}

// DetectImage returns nil when the message is not an image request.
// preferredModel is used when the message names no model itself.
func (d *KeywordImageDetector) DetectImage(message, preferredModel string) *models.ImageRequest {
	lower := strings.ToLower(message)
	if !containsAny(lower, imageKeywords) && !matchesAny(message, imagePatterns) {
		return nil
	}

	req := &models.ImageRequest{
		Prompt:  extractImagePrompt(message),
		Model:   models.ImageModelGPTImage,
		Quality: models.ImageQualityHD,
		Style:   models.ImageStyleVivid,
		Size:    models.ImageSizeSquare,
	}

	switch {
	case fastModelHint.MatchString(message):
		req.Model, req.Quality = models.ImageModelFluxFast, models.ImageQualityStandard
	case kontextProHint.MatchString(message):
		req.Model = models.ImageModelKontextPro
	case kontextMaxHint.MatchString(message):
		req.Model = models.ImageModelKontextMax
	case standardModelHint.MatchString(message):
		req.Model, req.Quality = models.ImageModelFluxFast, models.ImageQualityStandard
	case preferredModel != "":
		req.Model = preferredModel
		if preferredModel == models.ImageModelFluxFast {
			req.Quality = models.ImageQualityStandard
		}
	}

	if naturalStyleHint.MatchString(message) {
		req.Style = models.ImageStyleNatural
	}

	switch {
	case landscapeSizeHint.MatchString(message):
		req.Size = models.ImageSizeLandscape
	case portraitSizeHint.MatchString(message):
		req.Size = models.ImageSizePortrait
	}

	return req
}

func extractImagePrompt(message string) string {
	prompt := message
	for _, p := range imagePromptPrefixes {
		prompt = p.ReplaceAllString(prompt, "")
	}
	prompt = strings.TrimSpace(trailingPunct.ReplaceAllString(prompt, ""))

	if len(prompt) >= 5 {
		return prompt
	}
	if m := imageSubject.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	return message
}

// ApplyImageSettings fills size, style and quality from the caller defaults,
// one field at a time, unless the message itself names a value for that field.
func ApplyImageSettings(req *models.ImageRequest, message string, settings *models.ImageSettings) {
	if req == nil || settings == nil {
		return
	}
	if settings.Size != "" && !sizeOverrideHint.MatchString(message) {
		req.Size = settings.Size
	}
	if settings.Style != "" && !styleOverrideHint.MatchString(message) {
		req.Style = settings.Style
	}
	if settings.Quality != "" && !qualityOverrideHint.MatchString(message) {
		req.Quality = settings.Quality
	}
}
