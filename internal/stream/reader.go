package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

const maxFrameSize = 32 << 20

// Frame is one decoded record.
type Frame struct {
	Tag Tag
	// Raw is the JSON value after the colon.
	Raw []byte
}

// Text returns the string value of a 0 or 3 frame.
func (f Frame) Text() (string, error) {
	var s string
	if err := sonic.Unmarshal(f.Raw, &s); err != nil {
		return "", fmt.Errorf("decode %s frame: %w", f.Tag, err)
	}
	return s, nil
}

// Reader decodes frames from a response body.
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &Reader{scanner: scanner}
}

// Next returns the next frame, or io.EOF when the body is exhausted.
func (r *Reader) Next() (Frame, error) {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if len(line) < 3 || line[1] != ':' {
			return Frame{}, fmt.Errorf("malformed frame %q", truncate(line, 64))
		}
		raw := make([]byte, len(line)-2)
		copy(raw, line[2:])
		return Frame{Tag: Tag(line[0]), Raw: raw}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// ReadAll drains the body.
func ReadAll(r io.Reader) ([]Frame, error) {
	reader := NewReader(r)
	var frames []Frame
	for {
		f, err := reader.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
