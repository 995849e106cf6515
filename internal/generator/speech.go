package generator

import (
	"context"
	"time"

	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
)

const speechPath = "/generate-speech"

type speechRequestBody struct {
	Text         string `json:"text"`
	MultiSpeaker bool   `json:"multiSpeaker"`
	Voice        string `json:"voice"`
	Style        string `json:"style"`
}

type speechResponseBody struct {
	Success  bool                `json:"success"`
	Audio    string              `json:"audio"`
	MimeType string              `json:"mimeType"`
	Script   string              `json:"script"`
	Metadata *models.TTSMetadata `json:"metadata"`
	Error    string              `json:"error"`
}

type SpeechClient struct {
	http  *httpClient
	creds config.Credentials
	now   func() time.Time
}

func NewSpeechClient(cfg config.GeneratorConfig, creds config.Credentials) *SpeechClient {
	return &SpeechClient{
		http:  newHTTPClient(cfg.BaseURL, cfg.SpeechTimeout),
		creds: creds,
		now:   time.Now,
	}
}

func (c *SpeechClient) Ready() error {
	if !c.creds.Wavespeed {
		return &models.MissingCredentialError{
			Capability: "speech generation", Env: "WAVESPEED_API_KEY", Where: "https://wavespeed.ai",
		}
	}
	return nil
}

// Generate synthesises content. originalText is the user message echoed
// back in the payload metadata.
func (c *SpeechClient) Generate(
	ctx context.Context,
	content models.TTSContent,
	originalText string,
) models.Outcome[models.TTSGeneration] {
	failed := func(msg string) models.Outcome[models.TTSGeneration] {
		return models.Failed(models.TTSGeneration{
			Success:      false,
			Error:        msg,
			OriginalText: originalText,
		})
	}

	body := speechRequestBody{
		Text:         content.Text,
		MultiSpeaker: content.MultiSpeaker,
		Voice:        content.VoiceName,
		Style:        content.Style,
	}

	var resp speechResponseBody
	if err := c.http.postJSON(ctx, speechPath, body, &resp); err != nil {
		return failed(failureMessage(err, "TTS generation failed"))
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "TTS generation failed"
		}
		return failed(msg)
	}

	meta := models.TTSMetadata{}
	if resp.Metadata != nil {
		meta = *resp.Metadata
	}
	meta.OriginalText = originalText
	meta.IsMultiSpeaker = content.MultiSpeaker
	meta.Timestamp = c.now().UTC().Format(time.RFC3339)

	return models.Succeeded(models.TTSGeneration{
		Success:  true,
		Audio:    resp.Audio,
		MimeType: resp.MimeType,
		Script:   resp.Script,
		Metadata: &meta,
	})
}
