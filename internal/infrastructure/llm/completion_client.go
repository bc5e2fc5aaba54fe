package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"devkit/internal/domain/entity"
	"devkit/internal/domain/prompt"
	"devkit/internal/domain/repository"
	"devkit/internal/infrastructure/metrics"
)

// CompletionClient makes one best-effort call per request and never returns an error:
// faults come back as text starting with entity.CompletionErrorPrefix.
type CompletionClient struct {
	generator repository.TextGenerator
	timeout   time.Duration
	logger    *slog.Logger
}

func NewCompletionClient(generator repository.TextGenerator, timeout time.Duration, logger *slog.Logger) *CompletionClient {
	return &CompletionClient{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *CompletionClient) Complete(ctx context.Context, req entity.CompletionRequest) string {
	provider := c.generator.Provider()
	metrics.IncCompletionRequest(provider, c.generator.Model())

	if strings.TrimSpace(req.SystemRole) == "" {
		req.SystemRole = prompt.DefaultSystemRole
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.generator.Generate(ctx, req)
	metrics.ObserveCompletionDuration(provider, time.Since(start))
	if err != nil {
		metrics.IncError("llm", "generate")
		c.logger.Error("completion failed",
			"provider", provider,
			"model", c.generator.Model(),
			"err", err,
		)
		return entity.CompletionErrorPrefix + err.Error()
	}
	if strings.TrimSpace(text) == "" {
		metrics.IncError("llm", "empty_response")
		return entity.NoResponseText
	}

	c.logger.Debug("completion done", "provider", provider, "duration", time.Since(start), "chars", len(text))
	return text
}
