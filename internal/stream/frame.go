// Package stream implements the newline-delimited frame protocol used by the
// chat endpoint: every record is a one-character tag, a colon, a JSON value and "\n".
package stream

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Tag identifies the frame type.
type Tag byte

const (
	TagText   Tag = '0'
	TagError  Tag = '3'
	TagFinish Tag = 'd'
)

func (t Tag) String() string {
	return string(t)
}

// FinishPayload is the fixed payload of the terminal frame.
const FinishPayload = `{"finishReason":"stop"}`

var finishFrame = []byte(string(TagFinish) + ":" + FinishPayload + "\n")

// EncodeText builds a 0-tagged frame carrying s as a JSON string.
func EncodeText(s string) ([]byte, error) {
	return encodeString(TagText, s)
}

// EncodeError builds a 3-tagged frame carrying msg as a JSON string.
func EncodeError(msg string) ([]byte, error) {
	return encodeString(TagError, msg)
}

// FinishFrame returns the terminal frame.
func FinishFrame() []byte {
	out := make([]byte, len(finishFrame))
	copy(out, finishFrame)
	return out
}

func encodeString(tag Tag, s string) ([]byte, error) {
	data, err := sonic.ConfigDefault.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", tag, err)
	}
	frame := make([]byte, 0, len(data)+3)
	frame = append(frame, byte(tag), ':')
	frame = append(frame, data...)
	frame = append(frame, '\n')
	return frame, nil
}
