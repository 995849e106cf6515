package intent

import "regexp"

var reverseEngineeringPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Reverse Engineering Analysis for Images:`),
	regexp.MustCompile(`(?i)\*\*Reverse Engineering Analysis\*\*`),
	regexp.MustCompile(`(?i)AI Model Detection.*Identify the likely AI model`),
	regexp.MustCompile(`(?i)analyze.*uploaded.*files.*reverse.*engineering`),
	regexp.MustCompile(`(?i)Please provide a detailed analysis of the uploaded files:`),

	regexp.MustCompile(`(?i)Reverse Engineering Analysis for Videos:`),
	regexp.MustCompile(`(?i)reverse.*engineer.*this.*video`),
	regexp.MustCompile(`(?i)analyze.*video.*content.*reverse.*engineering`),
	regexp.MustCompile(`(?i)provide.*detailed.*analysis.*video.*reverse`),
	regexp.MustCompile(`(?i)recreate.*similar.*video.*content`),
	regexp.MustCompile(`(?i)video.*generation.*technique.*analysis`),
	regexp.MustCompile(`(?i)🔄.*reverse.*engineer`),

	regexp.MustCompile(`(?i)reverse.*engineer`),
	regexp.MustCompile(`(?i)recreate.*this.*content`),
	regexp.MustCompile(`(?i)analyze.*creation.*process`),
	regexp.MustCompile(`(?i)breakdown.*production.*technique`),
}

// ReverseEngineeringMatcher flags analysis requests about uploaded media.
// Such requests must never be routed to a generator.
type ReverseEngineeringMatcher struct{}

func NewReverseEngineeringMatcher() *ReverseEngineeringMatcher {
	return &ReverseEngineeringMatcher{}
}

func (ReverseEngineeringMatcher) IsAnalysisOnly(message string) bool {
	return matchesAny(message, reverseEngineeringPatterns)
}
