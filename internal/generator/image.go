package generator

import (
	"context"
	"fmt"

	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
)

const imagePath = "/generate-image"

type imageRequestBody struct {
	Prompt         string `json:"prompt"`
	OriginalPrompt string `json:"originalPrompt"`
	Model          string `json:"model"`
	Quality        string `json:"quality"`
	Style          string `json:"style"`
	Size           string `json:"size"`
}

type imageResponseBody struct {
	Success  *bool                   `json:"success"`
	Images   []models.GeneratedImage `json:"images"`
	Metadata *models.ImageMetadata   `json:"metadata"`
	Error    string                  `json:"error"`
	Details  string                  `json:"details"`
}

type ImageClient struct {
	http  *httpClient
	creds config.Credentials
}

func NewImageClient(cfg config.GeneratorConfig, creds config.Credentials) *ImageClient {
	return &ImageClient{
		http:  newHTTPClient(cfg.BaseURL, cfg.ImageTimeout),
		creds: creds,
	}
}

// Ready reports the credential an image model needs when it is not configured.
func (c *ImageClient) Ready(model string) error {
	switch model {
	case models.ImageModelGPTImage:
		if !c.creds.OpenAI {
			return &models.MissingCredentialError{
				Capability: "image generation", Env: "OPENAI_API_KEY", Where: "https://platform.openai.com/api-keys",
			}
		}
	case models.ImageModelKontextPro, models.ImageModelKontextMax:
		if !c.creds.Replicate {
			return &models.MissingCredentialError{
				Capability: "image generation", Env: "REPLICATE_API_KEY", Where: "https://replicate.com/account/api-tokens",
			}
		}
	}
	return nil
}

// Generate calls the image endpoint. It never returns a skipped outcome;
// callers check Ready first.
func (c *ImageClient) Generate(
	ctx context.Context,
	req *models.ImageRequest,
	originalPrompt string,
	placeholderID string,
) models.Outcome[models.ImageGeneration] {
	failed := func(msg string) models.Outcome[models.ImageGeneration] {
		return models.Failed(models.ImageGeneration{
			Success:       false,
			Error:         msg,
			Prompt:        req.Prompt,
			Model:         req.Model,
			PlaceholderID: placeholderID,
		})
	}

	body := imageRequestBody{
		Prompt:         req.Prompt,
		OriginalPrompt: originalPrompt,
		Model:          req.Model,
		Quality:        req.Quality,
		Style:          req.Style,
		Size:           req.Size,
	}

	var resp imageResponseBody
	if err := c.http.postJSON(ctx, imagePath, body, &resp); err != nil {
		return failed(failureMessage(err, "Failed to generate image"))
	}

	if resp.Success != nil && !*resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Details
		}
		if msg == "" {
			msg = "Failed to generate image"
		}
		return failed(msg)
	}
	if len(resp.Images) == 0 {
		return failed(fmt.Sprintf("image endpoint returned no images for model %s", req.Model))
	}

	return models.Succeeded(models.ImageGeneration{
		Success:       true,
		Images:        resp.Images,
		Metadata:      resp.Metadata,
		Prompt:        req.Prompt,
		PlaceholderID: placeholderID,
	})
}
