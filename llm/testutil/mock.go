// Package testutil provides test utilities for the llm package.
// It includes mock implementations for testing LLM client interactions.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/pageforge/llm"
)

// MockCompleter is a thread-safe mock LLM completer for testing.
// It returns configured responses in sequence and captures calls.
//
// Usage:
//
//	// Single response mock
//	mock := &MockCompleter{
//	    Responses: []*llm.Response{
//	        {Content: "export class LoginPage {}", Model: "test-model", Attempts: 1},
//	    },
//	}
//
//	// Error response
//	mock := &MockCompleter{
//	    Err: &llm.RequestError{Attempts: 3, Err: errors.New("connection failed")},
//	}
//
//	// Per-page behavior
//	mock := &MockCompleter{
//	    Handler: func(req llm.Request) (*llm.Response, error) { ... },
//	}
type MockCompleter struct {
	mu            sync.Mutex
	Responses     []*llm.Response // Responses to return in sequence
	Err           error           // Error to return (takes precedence over Responses)
	Handler       func(req llm.Request) (*llm.Response, error)
	callCount     int
	responseIndex int
	requests      []llm.Request
}

// Complete implements llm.Completer.
func (m *MockCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.requests = append(m.requests, req)

	if m.Handler != nil {
		return m.Handler(req)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	// Default response if no responses configured
	return &llm.Response{Content: "", Model: "test-model", Attempts: 1}, nil
}

// CallCount returns the number of times Complete() was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns the captured requests in call order.
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]llm.Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Reset clears the mock's call state for reuse across test cases.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.requests = nil
}
