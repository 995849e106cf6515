// Package generator holds the clients for the downstream generation
// endpoints (image, video, speech) and the web search provider.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx answer from a generation endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// postJSON sends body as JSON and decodes a 2xx response into result.
func (h *httpClient) postJSON(ctx context.Context, path string, body, result any) error {
	data, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := sonic.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage picks the "error" or "details" field of a JSON error body,
// falling back to the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Error   any `json:"error"`
		Details any `json:"details"`
	}
	if err := sonic.Unmarshal(raw, &body); err == nil {
		if s := stringify(body.Error); s != "" {
			return s
		}
		if s := stringify(body.Details); s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(raw))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if msg, ok := t["message"].(string); ok {
			return msg
		}
	}
	out, err := sonic.MarshalString(v)
	if err != nil {
		return ""
	}
	return out
}

// failureMessage turns any call error into the text shown to the user.
func failureMessage(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
