package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/notecheck/internal/model"
)

// MockRenderer records every matrix it is asked to render.
type MockRenderer struct {
	RenderFn func(ctx context.Context, m model.Matrix) error
	Rendered []model.Matrix
	mu       sync.Mutex
}

// Render implements Renderer.
func (r *MockRenderer) Render(ctx context.Context, m model.Matrix) error {
	r.mu.Lock()
	r.Rendered = append(r.Rendered, m)
	fn := r.RenderFn
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx, m)
	}
	return nil
}

// Calls returns how many times Render was called.
func (r *MockRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Rendered)
}

// MockProgress counts progress callbacks.
type MockProgress struct {
	Total      int
	Increments int
	Finished   bool
}

// Start implements Progress.
func (p *MockProgress) Start(total int) { p.Total = total }

// Increment implements Progress.
func (p *MockProgress) Increment() { p.Increments++ }

// Finish implements Progress.
func (p *MockProgress) Finish() { p.Finished = true }

var (
	_ Renderer = (*MockRenderer)(nil)
	_ Progress = (*MockProgress)(nil)
)
