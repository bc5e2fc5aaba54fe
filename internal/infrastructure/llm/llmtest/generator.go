// Package llmtest provides a scripted TextGenerator for tests.
package llmtest

import (
	"context"
	"sync"

	"devkit/internal/domain/entity"
)

// Generator replays a fixed reply or error and records every request it sees.
type Generator struct {
	Reply string
	Err   error
	// Hook, when set, replaces Reply/Err.
	Hook func(ctx context.Context, req entity.CompletionRequest) (string, error)

	mu       sync.Mutex
	requests []entity.CompletionRequest
}

func (g *Generator) Provider() string { return "fake" }

func (g *Generator) Model() string { return "fake-model" }

func (g *Generator) Generate(ctx context.Context, req entity.CompletionRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.Hook != nil {
		return g.Hook(ctx, req)
	}
	return g.Reply, g.Err
}

func (g *Generator) Requests() []entity.CompletionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]entity.CompletionRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}
