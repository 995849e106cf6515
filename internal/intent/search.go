package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kdduha/chatgateway/internal/models"
)

var (
	currentInfoKeywords = []string{
		"latest", "current", "today", "now", "recent", "news",
		"update", "this year", "this month",
		"right now", "at the moment", "currently", "breaking",
		"live", "ongoing", "happening", "fresh", "new", "just released",
	}

	factualKeywords = []string{
		"what is", "who is", "when did", "where is", "how does",
		"price of", "cost of", "statistics", "data", "facts about",
	}

	researchKeywords = []string{
		"compare", "versus", "vs", "difference between", "best",
		"top", "review", "analysis", "research", "study",
	}

	technicalKeywords = []string{
		"api", "documentation", "tutorial", "guide", "how to",
		"install", "setup", "configure", "troubleshoot", "error",
		"bug", "issue", "version", "release notes", "changelog",
	}

	productKeywords = []string{
		"product", "service", "tool", "software", "app",
		"platform", "features", "pricing", "plans", "specs",
		"specifications", "requirements", "compatibility",
	}

	historicalIndicators = []string{
		"in 2023", "in 2022", "in 2021", "in 2020", "last year",
		"years ago", "decades ago", "historically", "in the past",
		"previously", "before", "old", "vintage", "classic",
		"original", "first", "when it started", "history of",
	}

	// Requests to produce something are answered by a generator, not a search.
	actionExclusions = []string{
		"generate", "create", "make", "produce", "build", "design",
		"draw", "paint", "compose", "write", "edit", "modify",
		"dialogue", "conversation", "multi-speaker", "voice", "audio",
		"tts", "text to speech", "narrate", "speak", "say",
		"image", "picture", "photo", "video", "animation",
		"download", "save", "extract",
	}

	updatableTopics = []string{
		"statistics", "data", "population", "economy", "market",
		"technology", "software", "app", "service", "company",
		"price", "cost", "value", "rate", "percentage",
	}

	academicKeywords = []string{"academic", "scholarly", "peer-reviewed", "peer reviewed", "scientific paper", "journal article"}

	generativePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(create|generate|make|produce)\s+(a|an|some)?\s*(dialogue|conversation|audio|voice|image|video)`),
		regexp.MustCompile(`(?i)\b(dia\s*tts|wavespeed|multi.?speaker|voice\s*acting)\b`),
		regexp.MustCompile(`(?i)\b(alice|bob|charlie|speaker\s*\d+).{0,20}(say|speak|voice)`),
		regexp.MustCompile(`(?i)\bcharacters?\s+(talking|speaking|conversing)\b`),
		regexp.MustCompile(`(?i)\b(draw|paint|design|illustrate)\s+(a|an|some)?\s*(picture|image|scene)`),
	}

	timeframePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(today|yesterday|this week|last week|this month|last month|this year|last year)\b`),
		regexp.MustCompile(`(?i)\b(in the last|within the last|past|recent)\s+(\d+)\s+(days?|weeks?|months?|years?)\b`),
		regexp.MustCompile(`(?i)\b(since|from)\s+(\d{4}|\w+\s+\d{4})\b`),
		regexp.MustCompile(`(?i)\b(in|during)\s+(\d{4}|january|february|march|april|may|june|july|august|september|october|november|december)\b`),
	}

	questionPrefix = regexp.MustCompile(`(?i)^(what|who|when|where|how|why|is|are|can|could|would|should)\s+`)

	domainHints = []struct{ keyword, domain string }{
		{"reddit", "reddit.com"},
		{"wikipedia", "wikipedia.org"},
		{"github", "github.com"},
		{"stackoverflow", "stackoverflow.com"},
	}
)

// KeywordSearchDetector decides whether a message needs live web data.
type KeywordSearchDetector struct {
	now func() time.Time
}

func NewKeywordSearchDetector(now func() time.Time) *KeywordSearchDetector {
	if now == nil {
		now = time.Now
	}
	return &KeywordSearchDetector{now: now}
}

func (d *KeywordSearchDetector) DetectSearch(message string) *models.SearchIntent {
	lower := strings.ToLower(message)

	if containsAny(lower, actionExclusions) || matchesAny(message, generativePatterns) {
		return nil
	}

	year := d.now().Year()
	years := []string{strconv.Itoa(year), strconv.Itoa(year - 1), strconv.Itoa(year + 1)}

	needsCurrent := containsAny(lower, currentInfoKeywords) || containsAny(lower, years)
	needsFactual := containsAny(lower, factualKeywords)
	needsResearch := containsAny(lower, researchKeywords)
	needsTechnical := containsAny(lower, technicalKeywords)
	needsProduct := containsAny(lower, productKeywords)

	if !needsCurrent && !needsFactual && !needsResearch && !needsTechnical && !needsProduct {
		return nil
	}

	searchType := models.SearchFactual
	switch {
	case needsCurrent:
		searchType = models.SearchCurrentEvents
	case needsResearch:
		searchType = models.SearchResearch
	case needsTechnical:
		searchType = models.SearchTechnical
	case needsProduct:
		searchType = models.SearchProduct
	}

	temporal := analyzeTemporalContext(message, lower)

	var recency string
	switch {
	case temporal.HasExplicitTimeframe && temporal.DetectedTimeframe != "":
		recency = temporal.DetectedTimeframe
	case temporal.SuggestedRecencyFilter != "" && temporal.SuggestedRecencyFilter != "none":
		recency = temporal.SuggestedRecencyFilter
	}

	return &models.SearchIntent{
		Query:         extractSearchQuery(message),
		EnhancedQuery: enhanceQuery(message, temporal, searchType, year),
		Type:          searchType,
		Academic:      containsAny(lower, academicKeywords),
		RecencyFilter: recency,
		DomainFilter:  extractDomainFilter(lower),
		Temporal:      temporal,
	}
}

func analyzeTemporalContext(message, lower string) models.TemporalContext {
	tc := models.TemporalContext{
		HasExplicitTimeframe:   matchesAny(message, timeframePatterns),
		IsHistoricalQuery:      containsAny(lower, historicalIndicators),
		SuggestedRecencyFilter: "none",
	}

	switch {
	case strings.Contains(lower, "today") || strings.Contains(lower, "right now"):
		tc.DetectedTimeframe = "day"
	case strings.Contains(lower, "this week") || strings.Contains(lower, "last week"):
		tc.DetectedTimeframe = "week"
	case strings.Contains(lower, "this month") || strings.Contains(lower, "last month"):
		tc.DetectedTimeframe = "month"
	case strings.Contains(lower, "this year") || strings.Contains(lower, "last year"):
		tc.DetectedTimeframe = "year"
	}

	if tc.IsHistoricalQuery || tc.HasExplicitTimeframe {
		return tc
	}

	switch {
	case containsAny(lower, currentInfoKeywords):
		tc.RequiresFreshness = true
		tc.SuggestedRecencyFilter = "week"
	case containsAny(lower, technicalKeywords), containsAny(lower, productKeywords):
		tc.SuggestedRecencyFilter = "year"
	default:
		tc.SuggestedRecencyFilter = "month"
	}
	return tc
}

func enhanceQuery(query string, tc models.TemporalContext, searchType models.SearchType, year int) string {
	if tc.IsHistoricalQuery || tc.HasExplicitTimeframe {
		return query
	}

	lower := strings.ToLower(query)
	y := strconv.Itoa(year)
	hasYear := strings.Contains(lower, y)

	switch searchType {
	case models.SearchCurrentEvents, models.SearchProduct:
		if !hasYear && !strings.Contains(lower, "latest") {
			query += " latest " + y
		}
	case models.SearchTechnical:
		if !hasYear && !strings.Contains(lower, "current") {
			query += " current " + y
		}
	case models.SearchFactual:
		if containsAny(lower, updatableTopics) {
			query += " " + y
		}
	}
	return strings.TrimSpace(query)
}

func extractSearchQuery(message string) string {
	q := questionPrefix.ReplaceAllString(message, "")
	q = strings.TrimSuffix(q, "?")
	return strings.TrimSpace(q)
}

func extractDomainFilter(lower string) []string {
	var domains []string
	for _, h := range domainHints {
		if strings.Contains(lower, h.keyword) {
			domains = append(domains, h.domain)
		}
	}
	return domains
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
