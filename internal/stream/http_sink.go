package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

var ErrSinkClosed = errors.New("stream sink closed")

// HTTPSink writes frames to an HTTP response and flushes after each one.
// It stops accepting once the request context is done, a write fails or
// Close is called.
type HTTPSink struct {
	ctx     context.Context
	w       http.ResponseWriter
	flusher *http.ResponseController

	mu     sync.Mutex
	closed bool
}

func NewHTTPSink(ctx context.Context, w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{
		ctx:     ctx,
		w:       w,
		flusher: http.NewResponseController(w),
	}
}

func (s *HTTPSink) Accepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.ctx.Err() == nil
}

func (s *HTTPSink) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if err := s.ctx.Err(); err != nil {
		s.closed = true
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		s.closed = true
		return err
	}
	if err := s.flusher.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.closed = true
		return err
	}
	return nil
}

func (s *HTTPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
