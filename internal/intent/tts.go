package intent

import (
	"regexp"
	"strings"

	"github.com/kdduha/chatgateway/internal/models"
)

var (
	ttsCommandPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(read|speak|say|narrate|voice)\s+(this|out loud|the following)?\s*:`),
		regexp.MustCompile(`(?i)\b(tts|text.?to.?speech)\b`),
		regexp.MustCompile(`(?i)\b(generate|create)\s+(speech|audio|voice)\b`),
		regexp.MustCompile(`(?i)\bread\s+this\s+aloud\b`),
		regexp.MustCompile(`(?i)\bvoice\s+over\b`),
		regexp.MustCompile(`(?i)\bnarrate\s+(this|the following)\b`),
	}

	multiSpeakerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(multi.?speaker|dialogue|conversation|multiple.?voice)\b`),
		regexp.MustCompile(`(?i)\b(create|generate)\s+(a\s+)?(dialogue|conversation)\b`),
		regexp.MustCompile(`(?i)\b(two|multiple)\s+(people|speakers|voices)\b`),
		regexp.MustCompile(`(?i)\bdialogue\s+between\b`),
		regexp.MustCompile(`(?i)\bconversation\s+(about|between)\b`),
	}

	speakerTag = regexp.MustCompile(`\[S\d+\]`)

	ttsPrefix       = regexp.MustCompile(`(?i)^(read this aloud|tts|text to speech|say this|narrate this):\s*`)
	ttsSourcePrefix = regexp.MustCompile(`(?i)^(generate|create)\s+(speech|audio|voice)\s+(for|from):\s*`)
)

const (
	VoiceDefault      = "Default"
	VoiceMultiSpeaker = "Multi-Speaker"
	VoiceStyleNatural = "natural"
)

// PatternTTSDetector recognises speech synthesis requests, including bare
// speaker scripts such as "[S1] Hi! [S2] Hello!".
type PatternTTSDetector struct{}

func NewPatternTTSDetector() *PatternTTSDetector {
	return &PatternTTSDetector{}
}

func (d *PatternTTSDetector) DetectTTS(message string) *models.TTSRequest {
	script := isSpeakerScript(message)
	multi := matchesAny(message, multiSpeakerPatterns)
	if !script && !multi && !matchesAny(message, ttsCommandPatterns) {
		return nil
	}
	return &models.TTSRequest{MultiSpeaker: script || multi}
}

// isSpeakerScript reports whether at least two speaker tags are present and
// at least half of the non-empty lines carry one.
func isSpeakerScript(message string) bool {
	if len(speakerTag.FindAllStringIndex(message, 2)) < 2 {
		return false
	}
	var lines, tagged int
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		if speakerTag.MatchString(line) {
			tagged++
		}
	}
	return tagged*2 >= lines
}

// ExtractTTSContent builds the synthesis input from the user message.
func ExtractTTSContent(message string) models.TTSContent {
	script := isSpeakerScript(message)
	multi := script || matchesAny(message, multiSpeakerPatterns)

	if multi && !script {
		return models.TTSContent{
			Text:           message,
			VoiceName:      VoiceMultiSpeaker,
			Style:          VoiceStyleNatural,
			MultiSpeaker:   true,
			GenerateScript: true,
		}
	}

	text := ttsPrefix.ReplaceAllString(message, "")
	text = ttsSourcePrefix.ReplaceAllString(text, "")

	voice := VoiceDefault
	if multi {
		voice = VoiceMultiSpeaker
	}
	return models.TTSContent{
		Text:         strings.TrimSpace(text),
		VoiceName:    voice,
		Style:        VoiceStyleNatural,
		MultiSpeaker: multi,
	}
}
