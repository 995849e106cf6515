package models

// IntentKind names one classified user goal.
type IntentKind string

const (
	IntentNone               IntentKind = "none"
	IntentImageGeneration    IntentKind = "image_generation"
	IntentVideoGeneration    IntentKind = "video_generation"
	IntentTTS                IntentKind = "tts"
	IntentWebSearch          IntentKind = "web_search"
	IntentReverseEngineering IntentKind = "reverse_engineering"
)

// Intents is the resolved set for one request. At most one generation
// intent per kind is present; ReverseEngineering suppresses Image, Video and TTS.
type Intents struct {
	// Message is the classified user text with the force-search token removed.
	Message      string
	AnalysisOnly bool

	Search *SearchIntent
	Image  *ImageRequest
	Video  *VideoRequest
	TTS    *TTSRequest
}

func (i *Intents) Kinds() []IntentKind {
	var kinds []IntentKind
	if i.AnalysisOnly {
		kinds = append(kinds, IntentReverseEngineering)
	}
	if i.Search != nil {
		kinds = append(kinds, IntentWebSearch)
	}
	if i.Image != nil {
		kinds = append(kinds, IntentImageGeneration)
	}
	if i.Video != nil {
		kinds = append(kinds, IntentVideoGeneration)
	}
	if i.TTS != nil {
		kinds = append(kinds, IntentTTS)
	}
	if len(kinds) == 0 {
		kinds = append(kinds, IntentNone)
	}
	return kinds
}

type SearchType string

const (
	SearchCurrentEvents SearchType = "current_events"
	SearchFactual       SearchType = "factual"
	SearchResearch      SearchType = "research"
	SearchTechnical     SearchType = "technical"
	SearchProduct       SearchType = "product"
)

type SearchIntent struct {
	// Query is what the client sees in the search indicator.
	Query string
	// EnhancedQuery carries temporal keywords and is sent to the provider when set.
	EnhancedQuery string
	Type          SearchType
	Academic      bool
	RecencyFilter string
	DomainFilter  []string
	Forced        bool
	Temporal      TemporalContext
}

type TemporalContext struct {
	HasExplicitTimeframe   bool
	DetectedTimeframe      string
	SuggestedRecencyFilter string
	IsHistoricalQuery      bool
	RequiresFreshness      bool
}

const (
	ImageModelGPTImage      = "gpt-image-1"
	ImageModelFluxFast      = "flux-dev-ultra-fast"
	ImageModelKontextPro    = "flux-kontext-pro"
	ImageModelKontextMax    = "flux-kontext-max"
	ImageQualityStandard    = "standard"
	ImageQualityHD          = "hd"
	ImageStyleVivid         = "vivid"
	ImageStyleNatural       = "natural"
	ImageSizeSquare         = "1024x1024"
	ImageSizeLandscape      = "1792x1024"
	ImageSizePortrait       = "1024x1536"
	VideoTextToVideo        = "text-to-video"
	VideoImageToVideo       = "image-to-video"
	VideoBackendReplicate   = "replicate"
	VideoBackendHuggingFace = "huggingface"
	VideoTierFast           = "fast"
	VideoTierQuality        = "quality"
)

type ImageRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
	Size    string `json:"size"`
}

type VideoRequest struct {
	Type           string `json:"type"`
	Prompt         string `json:"prompt"`
	ImageURI       string `json:"imageUri,omitempty"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspectRatio"`
	Model          string `json:"model"`
	NegativePrompt string `json:"negativePrompt"`
	Backend        string `json:"backend"`
	Tier           string `json:"tier"`
}

type TTSRequest struct {
	MultiSpeaker bool
}

// TTSContent is the speaker script and voice parameters extracted from a message.
type TTSContent struct {
	Text           string
	VoiceName      string
	Style          string
	MultiSpeaker   bool
	GenerateScript bool
}
