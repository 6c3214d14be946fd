// Package testutil provides shared test helpers.
package testutil

import (
	"context"

	"github.com/giantswarm/essay-feedback/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	// Responses maps user messages to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Err, when set, is returned by every call.
	Err error

	// Calls tracks the number of ChatCompletion invocations.
	Calls int

	// LastRequest stores the most recent ChatRequest for inspection.
	LastRequest llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.Calls++
	m.LastRequest = req

	if m.Err != nil {
		return nil, m.Err
	}

	if resp, ok := m.Responses[req.UserMessage]; ok {
		return &llm.ChatResponse{Content: resp, Model: req.Model}, nil
	}

	if m.DefaultResponse != "" {
		return &llm.ChatResponse{Content: m.DefaultResponse, Model: req.Model}, nil
	}

	return &llm.ChatResponse{Content: "mock response", Model: req.Model}, nil
}
