package generator

import (
	"context"

	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
)

const videoPath = "/generate-video"

type videoRequestBody struct {
	Prompt         string `json:"prompt"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspectRatio"`
	Model          string `json:"model"`
	NegativePrompt string `json:"negativePrompt"`
	Backend        string `json:"backend"`
	Tier           string `json:"tier"`
	StartImage     string `json:"startImage,omitempty"`
}

type videoResponseBody struct {
	ID     string `json:"id"`
	Output any    `json:"output"`
	Status string `json:"status"`
}

// url accepts both a plain string output and a list of urls.
func (b *videoResponseBody) url() string {
	switch out := b.Output.(type) {
	case string:
		return out
	case []any:
		for _, v := range out {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

type VideoClient struct {
	http  *httpClient
	creds config.Credentials
}

func NewVideoClient(cfg config.GeneratorConfig, creds config.Credentials) *VideoClient {
	return &VideoClient{
		http:  newHTTPClient(cfg.BaseURL, cfg.VideoTimeout),
		creds: creds,
	}
}

func (c *VideoClient) Ready() error {
	if !c.creds.Replicate {
		return &models.MissingCredentialError{
			Capability: "video generation", Env: "REPLICATE_API_KEY", Where: "https://replicate.com/account/api-tokens",
		}
	}
	return nil
}

func (c *VideoClient) Generate(ctx context.Context, req *models.VideoRequest) models.Outcome[models.VideoGeneration] {
	base := models.VideoGeneration{
		Prompt:      req.Prompt,
		Duration:    req.Duration,
		AspectRatio: req.AspectRatio,
		Model:       req.Model,
	}
	if req.Type == models.VideoImageToVideo {
		base.SourceImage = req.ImageURI
	}

	backend, tier := req.Backend, req.Tier
	if backend == "" {
		backend = models.VideoBackendReplicate
	}
	if tier == "" {
		tier = models.VideoTierFast
	}

	body := videoRequestBody{
		Prompt:         req.Prompt,
		Duration:       req.Duration,
		AspectRatio:    req.AspectRatio,
		Model:          req.Model,
		NegativePrompt: req.NegativePrompt,
		Backend:        backend,
		Tier:           tier,
	}
	if req.Type == models.VideoImageToVideo && req.ImageURI != "" {
		body.StartImage = req.ImageURI
	}

	var resp videoResponseBody
	if err := c.http.postJSON(ctx, videoPath, body, &resp); err != nil {
		base.Status = models.VideoStatusFailed
		base.Error = failureMessage(err, "Video generation failed")
		return models.Failed(base)
	}

	base.ID = resp.ID
	base.URL = resp.url()
	base.Status = models.VideoStatusGenerating
	if resp.Status == models.VideoStatusSucceeded {
		base.Status = models.VideoStatusSucceeded
	}
	return models.Succeeded(base)
}
