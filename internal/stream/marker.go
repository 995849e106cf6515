package stream

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// MarkerName is a side-channel payload type embedded in the text stream.
// The names are part of the wire contract with existing clients.
type MarkerName string

const (
	MarkerWebSearchStarted         MarkerName = "WEB_SEARCH_STARTED"
	MarkerWebSearchCompleted       MarkerName = "WEB_SEARCH_COMPLETED"
	MarkerImageGenerationStarted   MarkerName = "IMAGE_GENERATION_STARTED"
	MarkerImageGenerationCompleted MarkerName = "IMAGE_GENERATION_COMPLETED"
	MarkerVideoGenerationStarted   MarkerName = "VIDEO_GENERATION_STARTED"
	MarkerTTSGenerationCompleted   MarkerName = "TTS_GENERATION_COMPLETED"
)

var knownMarkers = []MarkerName{
	MarkerWebSearchStarted,
	MarkerWebSearchCompleted,
	MarkerImageGenerationStarted,
	MarkerImageGenerationCompleted,
	MarkerVideoGenerationStarted,
	MarkerTTSGenerationCompleted,
}

func (m MarkerName) open() string  { return "[" + string(m) + "]" }
func (m MarkerName) close() string { return "[/" + string(m) + "]" }

// EncodeMarker renders payload as [NAME]<json>[/NAME]. The result is carried
// as the string value of a 0-tagged frame.
func EncodeMarker(name MarkerName, payload any) (string, error) {
	data, err := sonic.ConfigDefault.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", name, err)
	}
	var b strings.Builder
	b.Grow(len(data) + 2*len(name) + 5)
	b.WriteString(name.open())
	b.Write(data)
	b.WriteString(name.close())
	return b.String(), nil
}

// ParseMarker extracts the marker name and raw JSON payload from a text
// frame value. Surrounding whitespace inside the delimiters is tolerated.
func ParseMarker(s string) (MarkerName, []byte, bool) {
	trimmed := strings.TrimSpace(s)
	for _, name := range knownMarkers {
		if !strings.HasPrefix(trimmed, name.open()) || !strings.HasSuffix(trimmed, name.close()) {
			continue
		}
		body := trimmed[len(name.open()) : len(trimmed)-len(name.close())]
		return name, []byte(strings.TrimSpace(body)), true
	}
	return "", nil, false
}
