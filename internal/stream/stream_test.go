package stream

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferSink struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	closed   bool
	closes   int
	writeErr error
	panicky  bool
}

func (s *bufferSink) Accepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *bufferSink) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicky {
		panic("boom")
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.buf.Write(frame)
	return nil
}

func (s *bufferSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closes++
	return nil
}

func (s *bufferSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newTestWriter(sink Sink) (*Writer, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewWriter(sink, logrus.NewEntry(logger)), hook
}

func TestEncodeText(t *testing.T) {
	frame, err := EncodeText("Hello \"world\"\n")
	require.NoError(t, err)
	assert.Equal(t, "0:\"Hello \\\"world\\\"\\n\"\n", string(frame))

	frame, err = EncodeError("boom")
	require.NoError(t, err)
	assert.Equal(t, "3:\"boom\"\n", string(frame))

	assert.Equal(t, "d:{\"finishReason\":\"stop\"}\n", string(FinishFrame()))
}

func TestMarkerRoundTrip(t *testing.T) {
	payload := map[string]any{"query": "weather in tokyo", "hasResults": true}
	text, err := EncodeMarker(MarkerWebSearchStarted, payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "[WEB_SEARCH_STARTED]{"))
	assert.True(t, strings.HasSuffix(text, "}[/WEB_SEARCH_STARTED]"))

	name, raw, ok := ParseMarker("  " + text + "\n")
	require.True(t, ok)
	assert.Equal(t, MarkerWebSearchStarted, name)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	assert.Equal(t, "weather in tokyo", decoded["query"])
	assert.Equal(t, true, decoded["hasResults"])

	_, _, ok = ParseMarker("plain text")
	assert.False(t, ok)
	_, _, ok = ParseMarker("[WEB_SEARCH_STARTED]{}[/IMAGE_GENERATION_COMPLETED]")
	assert.False(t, ok)
}

func TestWriterFramesAndFinish(t *testing.T) {
	sink := &bufferSink{}
	w, _ := newTestWriter(sink)

	assert.True(t, w.Text("chat", "Hi"))
	assert.True(t, w.Marker("tts", MarkerTTSGenerationCompleted, map[string]bool{"success": true}))
	assert.True(t, w.Error("chat", "rate limited"))
	w.Finish()
	w.Finish()

	frames, err := ReadAll(strings.NewReader(sink.String()))
	require.NoError(t, err)
	require.Len(t, frames, 4)
	assert.Equal(t, TagText, frames[0].Tag)
	assert.Equal(t, TagError, frames[2].Tag)
	assert.Equal(t, TagFinish, frames[3].Tag)
	assert.Equal(t, FinishPayload, string(frames[3].Raw))

	marker, err := frames[1].Text()
	require.NoError(t, err)
	name, _, ok := ParseMarker(marker)
	require.True(t, ok)
	assert.Equal(t, MarkerTTSGenerationCompleted, name)

	assert.Equal(t, 1, sink.closes)
	assert.False(t, w.Accepting())
}

func TestWriterSkipsClosedSink(t *testing.T) {
	sink := &bufferSink{closed: true}
	w, hook := newTestWriter(sink)

	assert.False(t, w.Text("image-completed", "late"))
	w.Finish()

	assert.Empty(t, sink.String())
	require.NotEmpty(t, hook.AllEntries())
	entry := hook.AllEntries()[0]
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "image-completed", entry.Data["step"])
}

func TestWriterSwallowsWriteErrors(t *testing.T) {
	sink := &bufferSink{writeErr: errors.New("broken pipe")}
	w, hook := newTestWriter(sink)

	assert.False(t, w.Text("chat", "x"))
	assert.NotPanics(t, w.Finish)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestWriterRecoversSinkPanic(t *testing.T) {
	sink := &bufferSink{panicky: true}
	w, _ := newTestWriter(sink)

	assert.NotPanics(t, func() {
		assert.False(t, w.Text("chat", "x"))
		w.Finish()
	})
}

func TestWriterAfterFinishIsNoop(t *testing.T) {
	sink := &bufferSink{}
	w, _ := newTestWriter(sink)
	w.Finish()

	assert.False(t, w.Text("chat", "after"))
	assert.Equal(t, string(FinishFrame()), sink.String())
}

func TestHTTPSinkStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	sink := NewHTTPSink(ctx, rec)

	require.True(t, sink.Accepting())
	require.NoError(t, sink.Write([]byte("0:\"a\"\n")))
	assert.True(t, rec.Flushed)

	cancel()
	assert.False(t, sink.Accepting())
	assert.Error(t, sink.Write([]byte("0:\"b\"\n")))
	assert.Equal(t, "0:\"a\"\n", rec.Body.String())

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	assert.ErrorIs(t, sink.Write([]byte("x")), ErrSinkClosed)
}

func TestReaderRejectsMalformedLine(t *testing.T) {
	r := NewReader(strings.NewReader("0:\"ok\"\n\ngarbage\n"))
	f, err := r.Next()
	require.NoError(t, err)
	text, err := f.Text()
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	_, err = r.Next()
	assert.Error(t, err)
}
