package generate

import (
	"context"
	"sync"
)

// MockChat implements Chat for testing. If CompleteFunc is nil, the
// mock echoes the user payload back.
type MockChat struct {
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	mu    sync.Mutex
	calls []ChatCall
}

// ChatCall records one Complete invocation.
type ChatCall struct {
	System string
	User   string
}

// Complete records the call and delegates to CompleteFunc.
func (m *MockChat) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ChatCall{System: system, User: user})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return user, nil
}

// Calls returns all recorded invocations.
func (m *MockChat) Calls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent invocation, or nil.
func (m *MockChat) LastCall() *ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	c := m.calls[len(m.calls)-1]
	return &c
}

var _ Chat = (*MockChat)(nil)
