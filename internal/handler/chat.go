package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/kdduha/chatgateway/internal/service"
	"github.com/kdduha/chatgateway/internal/stream"
	"github.com/sirupsen/logrus"
)

type chatService interface {
	Prepare(req *models.ChatRequest) (*service.Turn, error)
	Run(ctx context.Context, logger *logrus.Entry, turn *service.Turn, w *stream.Writer)
}

type ChatHandler struct {
	service      chatService
	logger       *logrus.Logger
	maxBodyBytes int64
}

func NewChatHandler(service chatService, logger *logrus.Logger, maxBodyBytes int64) *ChatHandler {
	return &ChatHandler{
		service:      service,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// Chat godoc
// @Summary Stream a chat turn
// @Description Streams chat tokens multiplexed with web search, image, video and speech generation markers.
// @Description Frames are newline-delimited `<tag>:<json>`: 0 carries text or a marker, 3 an error, d the finish payload.
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {string} string "Frame stream"
// @Failure 400 {string} string "Invalid messages format"
// @Failure 400 {object} map[string]string "Unsupported model"
// @Router /api/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithFields(logrus.Fields{
		"requestId": middleware.GetReqID(r.Context()),
		"endpoint":  r.URL.Path,
	})

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req models.ChatRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(err).Warn("decode chat request")
		writeText(w, http.StatusBadRequest, models.InvalidMessagesText)
		return
	}

	turn, err := h.service.Prepare(&req)
	switch {
	case errors.Is(err, models.ErrUnsupportedModel):
		logger.WithField("model", req.Model).Warn("unsupported model")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported model: " + req.Model})
		return
	case err != nil:
		logger.WithError(err).Warn("invalid chat request")
		writeText(w, http.StatusBadRequest, models.InvalidMessagesText)
		return
	}

	logger = logger.WithField("model", turn.Model)

	// Errors from here on travel as frames, so the status is always 200.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writer := stream.NewWriter(stream.NewHTTPSink(r.Context(), w), logger)
	defer writer.Finish()
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithField("panic", fmt.Sprint(rec)).Error("chat handler panicked")
			writer.Error("handler", models.UnknownErrorText)
		}
	}()

	h.service.Run(r.Context(), logger, turn, writer)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
