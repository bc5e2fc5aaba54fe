package repository

import (
	"context"

	"devkit/internal/domain/entity"
)

// TextGenerator is a remote text-completion backend.
type TextGenerator interface {
	// Generate returns the raw model reply for one request.
	Generate(ctx context.Context, req entity.CompletionRequest) (string, error)
	Provider() string
	Model() string
}
