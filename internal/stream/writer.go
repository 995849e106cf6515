package stream

import (
	"fmt"
	"sync"

	"github.com/kdduha/chatgateway/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Sink is the transport a Writer emits frames to.
type Sink interface {
	// Accepting reports whether the sink can still take writes.
	Accepting() bool
	Write(frame []byte) error
	Close() error
}

// Writer serializes frames onto a Sink. Every write is guarded: a closed or
// failing sink turns into a logged no-op and never aborts the caller.
type Writer struct {
	sink   Sink
	logger *logrus.Entry

	mu       sync.Mutex
	finished bool
}

func NewWriter(sink Sink, logger *logrus.Entry) *Writer {
	return &Writer{sink: sink, logger: logger}
}

// Accepting reports whether further frames can reach the client.
func (w *Writer) Accepting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.finished && w.accepting()
}

// Text writes a 0-tagged frame. step names the orchestration stage for logs.
func (w *Writer) Text(step, text string) bool {
	frame, err := EncodeText(text)
	if err != nil {
		w.logger.WithError(err).WithField("step", step).Error("encode text frame")
		return false
	}
	return w.send(step, TagText, frame)
}

// Marker writes a [NAME]<json>[/NAME] payload inside a 0-tagged frame.
func (w *Writer) Marker(step string, name MarkerName, payload any) bool {
	text, err := EncodeMarker(name, payload)
	if err != nil {
		w.logger.WithError(err).WithField("step", step).Error("encode marker")
		return false
	}
	return w.Text(step, text)
}

// Error writes a 3-tagged frame.
func (w *Writer) Error(step, msg string) bool {
	frame, err := EncodeError(msg)
	if err != nil {
		w.logger.WithError(err).WithField("step", step).Error("encode error frame")
		return false
	}
	return w.send(step, TagError, frame)
}

// Finish writes the terminal frame and closes the sink. Only the first call
// has any effect.
func (w *Writer) Finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return
	}
	w.finished = true

	w.write("finish", TagFinish, FinishFrame())

	func() {
		defer w.recoverSink("close")
		if err := w.sink.Close(); err != nil {
			w.logger.WithError(err).Debug("close stream sink")
		}
	}()
}

func (w *Writer) send(step string, tag Tag, frame []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		w.drop(step, "stream already finished")
		return false
	}
	return w.write(step, tag, frame)
}

// write must be called with mu held.
func (w *Writer) write(step string, tag Tag, frame []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.WithFields(logrus.Fields{
				"step":  step,
				"panic": fmt.Sprint(r),
			}).Error("stream sink panicked")
			ok = false
		}
	}()

	if !w.accepting() {
		w.drop(step, "stream no longer writable")
		return false
	}
	if err := w.sink.Write(frame); err != nil {
		w.logger.WithError(err).WithField("step", step).Error("write stream frame")
		metrics.StreamFrameDropped(step)
		return false
	}
	metrics.StreamFrame(tag.String())
	return true
}

func (w *Writer) accepting() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return w.sink.Accepting()
}

func (w *Writer) drop(step, reason string) {
	w.logger.WithField("step", step).Warn(reason)
	metrics.StreamFrameDropped(step)
}

func (w *Writer) recoverSink(op string) {
	if r := recover(); r != nil {
		w.logger.WithFields(logrus.Fields{
			"op":    op,
			"panic": fmt.Sprint(r),
		}).Error("stream sink panicked")
	}
}
