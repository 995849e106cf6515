package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/chatgateway/internal/chat"
	"github.com/kdduha/chatgateway/internal/config"
	"github.com/kdduha/chatgateway/internal/intent"
	"github.com/kdduha/chatgateway/internal/logger"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/kdduha/chatgateway/internal/service"
	"github.com/kdduha/chatgateway/internal/stream"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoStreamer struct{}

func (echoStreamer) StreamChat(_ context.Context, p *chat.Prompt) (<-chan models.StreamChunk, error) {
	ch := make(chan models.StreamChunk, 2)
	ch <- models.StreamChunk{Delta: "you said: "}
	ch <- models.StreamChunk{Delta: p.Messages[len(p.Messages)-1].Content.PlainText()}
	close(ch)
	return ch, nil
}

type panickyService struct{}

func (panickyService) Prepare(req *models.ChatRequest) (*service.Turn, error) {
	return &service.Turn{Request: req, Model: "m"}, nil
}

func (panickyService) Run(context.Context, *logrus.Entry, *service.Turn, *stream.Writer) {
	panic("orchestrator exploded")
}

func newChatHandler() *ChatHandler {
	router := chat.NewRouter("gemini-2.0-flash")
	router.Register(echoStreamer{}, "gemini-2.0-flash")
	orchestrator := service.NewOrchestrator(intent.NewResolver(nil), router, service.Generators{}, time.Minute)
	return NewChatHandler(orchestrator, logger.Discard(), 1<<20)
}

func postChat(h *ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatRejectsMalformedMessages(t *testing.T) {
	for _, body := range []string{`{}`, `{"messages":"hello"}`, `not json`, `{"messages":[{"role":"assistant","content":"hi"}]}`} {
		t.Run(body, func(t *testing.T) {
			rec := postChat(newChatHandler(), body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, models.InvalidMessagesText, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestChatRejectsUnsupportedModel(t *testing.T) {
	rec := postChat(newChatHandler(), `{"model":"llama-9000","messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Unsupported model: llama-9000"}`, rec.Body.String())
}

func TestChatStreamsFrames(t *testing.T) {
	rec := postChat(newChatHandler(), `{"messages":[{"role":"user","content":"hello there"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))

	assert.Equal(t,
		"0:\"you said: \"\n"+
			"0:\"hello there\"\n"+
			"d:{\"finishReason\":\"stop\"}\n",
		rec.Body.String())
}

func TestChatPanicStillFinishes(t *testing.T) {
	h := NewChatHandler(panickyService{}, logger.Discard(), 0)
	rec := postChat(h, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	frames, err := stream.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, stream.TagError, frames[0].Tag)
	msg, err := frames[0].Text()
	require.NoError(t, err)
	assert.Equal(t, models.UnknownErrorText, msg)

	assert.Equal(t, stream.TagFinish, frames[1].Tag)
	assert.JSONEq(t, stream.FinishPayload, string(frames[1].Raw))
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(config.Credentials{OpenAI: true, Wavespeed: true}, []string{"gemini-2.0-flash"})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"gemini-2.0-flash"}, resp.Models)
	assert.True(t, resp.Capabilities["imageGptImage"])
	assert.True(t, resp.Capabilities["speechGeneration"])
	assert.False(t, resp.Capabilities["webSearch"])
	assert.False(t, resp.Capabilities["videoGeneration"])
}
