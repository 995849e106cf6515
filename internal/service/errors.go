package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kdduha/chatgateway/internal/generator"
	"github.com/kdduha/chatgateway/internal/models"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// classifyError turns a failure into the message carried by a 3: frame.
func classifyError(err error) string {
	var missing *models.MissingCredentialError
	if errors.As(err, &missing) {
		msg := fmt.Sprintf("%s is not configured. Set %s in your environment", missing.Capability, missing.Env)
		if missing.Where != "" {
			msg += fmt.Sprintf(". Get a key at %s", missing.Where)
		}
		return msg + "."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try a shorter request or try again later."
	}

	switch statusCode(err) {
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please try again later."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "The model provider rejected the API key. Please check your credentials."
	}

	return "I encountered an error processing your request: " + err.Error()
}

// statusCode extracts the upstream HTTP status from provider errors, or 0.
func statusCode(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) {
		return genaiPtr.Code
	}
	var statusErr *generator.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
