package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/kdduha/chatgateway/internal/models"
)

const (
	searchInstructionsTemplate = `System: Today's date is %s. Current time is %s.
You have been provided with real-time web search results below.

CRITICAL INSTRUCTIONS:
1. You MUST base your entire response on the search results provided below
2. Do NOT use information from your training data when search results are available
3. Always cite the sources from the search results
4. If the search results mention dates, use those dates in your response
5. Your knowledge cutoff does not apply when using search results - trust the search data`

	searchResultsTemplate = `REAL-TIME WEB SEARCH RESULTS (USE THIS DATA):
%s

Citations: %s

IMPORTANT: Base your entire response on the above search results. These are current, real-time results that supersede any training data.`

	searchErrorTemplate = `System: Web search encountered an error: %s
Please provide the best answer you can based on your training data, but mention that current information may differ.`
)

// searchContext renders a finished search for the chat model. It returns an
// empty string when the search produced nothing usable.
func searchContext(now time.Time, out *models.SearchOutcome) string {
	switch {
	case out == nil:
		return ""
	case out.Answer != nil && out.Answer.Content != "":
		return fmt.Sprintf(searchInstructionsTemplate,
			now.Format("Monday, January 2, 2006"), now.Format("3:04:05 PM MST")) +
			"\n\n" +
			fmt.Sprintf(searchResultsTemplate, out.Answer.Content, strings.Join(out.Answer.Citations, ", "))
	case out.Error != "":
		return fmt.Sprintf(searchErrorTemplate, out.Error)
	}
	return ""
}
