package mocks

import (
	"context"
	"sync"

	"github.com/tobyjamez/UDA/internal/domain"
)

// MockRenderer implements domain.Renderer for testing
type MockRenderer struct {
	RenderLineFunc func(ctx context.Context, spec domain.LineSpec, format domain.Format) ([]byte, error)

	mu sync.Mutex
	// Specs records every spec passed to RenderLine. Read it once the calls
	// have returned.
	Specs []domain.LineSpec
}

// RenderLine calls the mock function if set, otherwise returns empty byte slice and nil error
func (m *MockRenderer) RenderLine(ctx context.Context, spec domain.LineSpec, format domain.Format) ([]byte, error) {
	m.mu.Lock()
	m.Specs = append(m.Specs, spec)
	m.mu.Unlock()
	if m.RenderLineFunc != nil {
		return m.RenderLineFunc(ctx, spec, format)
	}
	return []byte{}, nil
}
