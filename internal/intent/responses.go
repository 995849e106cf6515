package intent

import (
	"fmt"
	"strings"

	"github.com/kdduha/chatgateway/internal/models"
)

// ImageAck is the fixed reply written instead of a chat turn when the request
// only asks for an image.
func ImageAck(req *models.ImageRequest) string {
	var name, emoji, ready string
	switch req.Model {
	case models.ImageModelGPTImage:
		name, emoji, ready = "GPT-Image-1", "✨", "Your HD image"
	case models.ImageModelKontextPro:
		name, emoji, ready = "Flux Kontext Pro", "🎨", "Your professional-quality image"
	case models.ImageModelKontextMax:
		name, emoji, ready = "Flux Kontext Max", "🚀", "Your maximum-quality image"
	default:
		name, emoji, ready = "WaveSpeed AI", "⚡", "Your image"
	}

	verb := "created"
	if req.Model == models.ImageModelKontextPro || req.Model == models.ImageModelFluxFast {
		verb = "generated"
	}

	return fmt.Sprintf("I've %s your image with **%s** %s\n\n*\"%s\"*\n\n%s is now ready in the **Images** tab.",
		verb, name, emoji, req.Prompt, ready)
}

var aspectRatioLabels = map[string]string{
	AspectLandscape: "Landscape (16:9)",
	AspectPortrait:  "Portrait (9:16)",
	AspectSquare:    "Square (1:1)",
}

// VideoAck is written before the chat tokens of a turn that started a video.
func VideoAck(req *models.VideoRequest) string {
	aspect, ok := aspectRatioLabels[req.AspectRatio]
	if !ok {
		aspect = req.AspectRatio
	}

	hf := req.Backend == models.VideoBackendHuggingFace
	quality := req.Tier == models.VideoTierQuality
	pro := req.Model == VideoModelPro

	provider, estimate := "Replicate", "5-8 minutes"
	var modelName string
	switch {
	case hf && quality:
		provider, modelName, estimate = "HuggingFace", "HunyuanVideo (H100 Quality)", "6-8 minutes"
	case hf:
		provider, modelName, estimate = "HuggingFace", "HunyuanVideo (L40 S Fast)", "3-4 minutes"
	case pro:
		modelName = "Kling v1.6 Pro"
	default:
		modelName = "Kling v1.6 Standard"
	}

	var b strings.Builder
	if req.Type == models.VideoImageToVideo {
		fmt.Fprintf(&b, "I'm animating your uploaded image into a %d-second video! 🎬\n\n", req.Duration)
		b.WriteString("**Animation Details:**\n")
		fmt.Fprintf(&b, "- Provider: %s\n- Model: %s\n- Duration: %d seconds\n- Aspect Ratio: %s\n", provider, modelName, req.Duration, aspect)
		b.WriteString("- Source: Your uploaded image\n\n")
		fmt.Fprintf(&b, "**Animation Instructions:** \"%s\"\n\n", req.Prompt)
		fmt.Fprintf(&b, "The animation typically takes %s to generate. You'll see the result in the Video tab!", estimate)
		return b.String()
	}

	qualityText := "Standard quality"
	switch {
	case hf && quality:
		qualityText = "Highest quality (H100 GPU)"
	case pro:
		qualityText = "High quality professional output"
	}

	fmt.Fprintf(&b, "I'll generate a %d-second video of \"%s\" for you.\n\n", req.Duration, req.Prompt)
	b.WriteString("**Video Details:**\n")
	fmt.Fprintf(&b, "- Provider: %s\n- Model: %s\n- Duration: %d seconds\n- Aspect Ratio: %s\n- Quality: %s\n\n",
		provider, modelName, req.Duration, aspect, qualityText)
	fmt.Fprintf(&b, "The video is being generated and will appear in the Video tab. %s typically takes %s to generate a %d-second video.\n\n",
		modelName, estimate, req.Duration)
	b.WriteString("The video generation has started! Check the Video tab in a few minutes.")
	return b.String()
}
