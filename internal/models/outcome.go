package models

// Status of one generator invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one generator call. Value is the wire payload for
// both success and failure. Skipped capabilities only show up in metrics.
type Outcome[T any] struct {
	Status Status
	Value  T
}

func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusSuccess, Value: v}
}

func Failed[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusFailure, Value: v}
}

type GeneratedImage struct {
	URL           string `json:"url"`
	OriginalURL   string `json:"originalUrl,omitempty"`
	RevisedPrompt string `json:"revisedPrompt,omitempty"`
}

type ImageMetadata struct {
	Model            string `json:"model,omitempty"`
	Quality          string `json:"quality,omitempty"`
	Style            string `json:"style,omitempty"`
	Size             string `json:"size,omitempty"`
	OriginalPrompt   string `json:"originalPrompt,omitempty"`
	PermanentStorage bool   `json:"permanentStorage"`
}

// ImageGeneration is the IMAGE_GENERATION_COMPLETED payload.
type ImageGeneration struct {
	Success       bool             `json:"success"`
	Images        []GeneratedImage `json:"images,omitempty"`
	Metadata      *ImageMetadata   `json:"metadata,omitempty"`
	Prompt        string           `json:"prompt"`
	Model         string           `json:"model,omitempty"`
	PlaceholderID string           `json:"placeholderId,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// ImageProgress is the IMAGE_GENERATION_STARTED payload.
type ImageProgress struct {
	PlaceholderID string `json:"placeholderId"`
	Prompt        string `json:"prompt"`
	Model         string `json:"model"`
	Quality       string `json:"quality"`
	Style         string `json:"style"`
	Size          string `json:"size"`
}

const (
	VideoStatusSucceeded  = "succeeded"
	VideoStatusGenerating = "generating"
	VideoStatusFailed     = "failed"
)

// VideoGeneration is the VIDEO_GENERATION_STARTED payload.
type VideoGeneration struct {
	ID          string `json:"id,omitempty"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration"`
	AspectRatio string `json:"aspectRatio"`
	Model       string `json:"model"`
	SourceImage string `json:"sourceImage,omitempty"`
	Error       string `json:"error,omitempty"`
}

type TTSMetadata struct {
	Speakers       int     `json:"speakers,omitempty"`
	Duration       float64 `json:"duration,omitempty"`
	VoiceID        string  `json:"voiceId,omitempty"`
	Provider       string  `json:"provider,omitempty"`
	PredictionID   string  `json:"predictionId,omitempty"`
	ProcessedText  string  `json:"processedText,omitempty"`
	OriginalText   string  `json:"originalText"`
	IsMultiSpeaker bool    `json:"isMultiSpeaker"`
	Timestamp      string  `json:"timestamp"`
}

// TTSGeneration is the TTS_GENERATION_COMPLETED payload.
type TTSGeneration struct {
	Success      bool         `json:"success"`
	Audio        string       `json:"audio,omitempty"`
	MimeType     string       `json:"mimeType,omitempty"`
	Script       string       `json:"script,omitempty"`
	Metadata     *TTSMetadata `json:"metadata,omitempty"`
	Error        string       `json:"error,omitempty"`
	OriginalText string       `json:"originalText,omitempty"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Author  string `json:"author,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

type SearchImage struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
}

// SearchAnswer is the decoded search provider response.
type SearchAnswer struct {
	Content          string         `json:"content"`
	Citations        []string       `json:"citations"`
	SearchResults    []SearchResult `json:"search_results"`
	Images           []SearchImage  `json:"images"`
	RelatedQuestions []string       `json:"related_questions"`
}

// SearchOutcome holds either an answer or a user-facing WebSearchError.
type SearchOutcome struct {
	Query  string
	Answer *SearchAnswer
	Error  string
}

// WebSearchStarted is the WEB_SEARCH_STARTED payload.
type WebSearchStarted struct {
	Query      string `json:"query"`
	HasResults bool   `json:"hasResults"`
	HasError   bool   `json:"hasError"`
}

// WebSearchCompleted is the WEB_SEARCH_COMPLETED payload.
type WebSearchCompleted struct {
	HasSearch        bool           `json:"hasSearch"`
	HasError         bool           `json:"hasError"`
	Error            *string        `json:"error"`
	Citations        []string       `json:"citations"`
	SearchResults    []SearchResult `json:"searchResults"`
	Images           []SearchImage  `json:"images"`
	RelatedQuestions []string       `json:"relatedQuestions"`
}

func (o *SearchOutcome) Started() WebSearchStarted {
	return WebSearchStarted{
		Query:      o.Query,
		HasResults: o.Answer != nil,
		HasError:   o.Error != "",
	}
}

func (o *SearchOutcome) Completed() WebSearchCompleted {
	c := WebSearchCompleted{
		HasSearch:        o.Answer != nil,
		HasError:         o.Error != "",
		Citations:        []string{},
		SearchResults:    []SearchResult{},
		Images:           []SearchImage{},
		RelatedQuestions: []string{},
	}
	if o.Error != "" {
		msg := o.Error
		c.Error = &msg
	}
	if a := o.Answer; a != nil {
		if a.Citations != nil {
			c.Citations = a.Citations
		}
		if a.SearchResults != nil {
			c.SearchResults = a.SearchResults
		}
		if a.Images != nil {
			c.Images = a.Images
		}
		if a.RelatedQuestions != nil {
			c.RelatedQuestions = a.RelatedQuestions
		}
	}
	return c
}
