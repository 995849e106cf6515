package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const (
	searchPath = "chat/completions"

	searchModeWeb      = "web"
	searchModeAcademic = "academic"

	MissingSearchKeyMessage = "Web search requires a Perplexity API key. Add PERPLEXITY_API_KEY to your .env.local file. Get one at https://www.perplexity.ai/settings/api"
	searchFallbackMessage   = "Web search temporarily unavailable. Using cached knowledge instead."
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type searchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type searchRequestBody struct {
	Model                  string          `json:"model"`
	Messages               []searchMessage `json:"messages"`
	SearchMode             string          `json:"search_mode"`
	ReturnImages           bool            `json:"return_images"`
	ReturnRelatedQuestions bool            `json:"return_related_questions"`
	RecencyFilter          string          `json:"search_recency_filter,omitempty"`
	DomainFilter           []string        `json:"search_domain_filter,omitempty"`
}

type searchResponseBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string              `json:"citations"`
	SearchResults []models.SearchResult `json:"search_results"`
	Images        []struct {
		ImageURL  string `json:"image_url"`
		OriginURL string `json:"origin_url"`
		Title     string `json:"title"`
	} `json:"images"`
	RelatedQuestions []string `json:"related_questions"`
}

func (b *searchResponseBody) answer() *models.SearchAnswer {
	a := &models.SearchAnswer{
		Citations:        b.Citations,
		SearchResults:    b.SearchResults,
		RelatedQuestions: b.RelatedQuestions,
	}
	if len(b.Choices) > 0 {
		a.Content = b.Choices[0].Message.Content
	}
	for _, img := range b.Images {
		if img.ImageURL == "" {
			continue
		}
		a.Images = append(a.Images, models.SearchImage{URL: img.ImageURL, Title: img.Title, Source: img.OriginURL})
	}
	return a
}

// SearchClient queries an OpenAI-compatible web search provider.
type SearchClient struct {
	client openai.Client
	cfg    config.SearchConfig
	cache  Cache
	logger *logrus.Logger
	now    func() time.Time
}

func NewSearchClient(logger *logrus.Logger, cfg config.SearchConfig, opts ...option.RequestOption) *SearchClient {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	}
	return &SearchClient{
		client: openai.NewClient(append(base, opts...)...),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (c *SearchClient) SetCacheClient(cache Cache) {
	c.cache = cache
}

// Search runs one query. Failures are reported in the outcome's Error field
// as a message fit for the user; Search itself never fails.
func (c *SearchClient) Search(ctx context.Context, intent *models.SearchIntent) models.SearchOutcome {
	out := models.SearchOutcome{Query: intent.Query}
	if c.cfg.APIKey == "" {
		out.Error = MissingSearchKeyMessage
		return out
	}

	query := intent.EnhancedQuery
	if query == "" {
		query = intent.Query
	}

	mode := searchModeWeb
	ttl := c.cfg.CacheTTLWeb
	if intent.Academic {
		mode = searchModeAcademic
		ttl = c.cfg.CacheTTLAcademic
	}

	key := searchCacheKey(query, mode, intent.RecencyFilter, intent.DomainFilter)
	if answer, ok := c.fromCache(ctx, key); ok {
		out.Answer = answer
		return out
	}

	body := searchRequestBody{
		Model: c.cfg.Model,
		Messages: []searchMessage{
			{Role: "system", Content: SearchSystemPrompt(c.now(), intent.Temporal)},
			{Role: "user", Content: query},
		},
		SearchMode:             mode,
		ReturnImages:           true,
		ReturnRelatedQuestions: true,
		RecencyFilter:          intent.RecencyFilter,
		DomainFilter:           intent.DomainFilter,
	}

	var resp searchResponseBody
	if err := c.client.Post(ctx, searchPath, body, &resp); err != nil {
		c.logger.WithError(err).WithField("query", query).Error("web search failed")
		out.Error = searchErrorMessage(err)
		return out
	}

	out.Answer = resp.answer()
	c.toCache(ctx, key, out.Answer, ttl)
	return out
}

func (c *SearchClient) fromCache(ctx context.Context, key string) (*models.SearchAnswer, bool) {
	if c.cache == nil {
		return nil, false
	}
	cached, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).Warn("search cache get")
		return nil, false
	}
	if !found {
		return nil, false
	}
	var answer models.SearchAnswer
	if err := sonic.UnmarshalString(cached, &answer); err != nil {
		c.logger.WithError(err).Warn("search cache entry is corrupt")
		return nil, false
	}
	c.logger.Debug("search served from cache")
	return &answer, true
}

func (c *SearchClient) toCache(ctx context.Context, key string, answer *models.SearchAnswer, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	data, err := sonic.MarshalString(answer)
	if err != nil {
		c.logger.WithError(err).Warn("encode search cache entry")
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		c.logger.WithError(err).Warn("search cache set")
	}
}

func searchCacheKey(query, mode, recency string, domains []string) string {
	data := []string{"search", mode, recency, strings.Join(domains, ","), strings.ToLower(strings.TrimSpace(query))}
	hash := sha256.Sum256([]byte(strings.Join(data, "-")))
	return "search:" + hex.EncodeToString(hash[:])
}

func searchErrorMessage(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch code := apiErr.StatusCode; {
		case code == http.StatusUnauthorized:
			return "Invalid or missing Perplexity API key. Please check your PERPLEXITY_API_KEY in .env.local"
		case code == http.StatusForbidden:
			return "Perplexity API access denied. Your API key may not have permission for this request."
		case code == http.StatusTooManyRequests:
			return "Perplexity API rate limit exceeded. Please try again later."
		case code >= 500:
			return fmt.Sprintf("Perplexity API server error (%d). Web search temporarily unavailable.", code)
		}
	}
	return searchFallbackMessage
}

// SearchSystemPrompt tells the search model the current date and how to cite.
func SearchSystemPrompt(now time.Time, tc models.TemporalContext) string {
	guidance := "Provide current information while noting the publication date when relevant."
	switch {
	case tc.RequiresFreshness:
		guidance = "Prioritize the most recent information and clearly indicate when information was published or last updated."
	case tc.IsHistoricalQuery:
		guidance = "Focus on historical information as requested by the user."
	}

	return fmt.Sprintf(`You are a helpful AI assistant with access to real-time web search.
Today's date is %s.
Current time: %s.
%s
Always provide the most current and up-to-date information based on search results.
Always cite your sources when using searched information.
Format citations as [Source Name](URL) when referencing search results.
When information might be time-sensitive, clearly indicate the publication date or last update time.`,
		now.Format("Monday, January 2, 2006"), now.Format("3:04:05 PM MST"), guidance)
}
