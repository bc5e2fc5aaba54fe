package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devkit/internal/domain/entity"
	"devkit/internal/domain/prompt"
	"devkit/internal/infrastructure/llm/llmtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompletionClient_ReturnsRawText(t *testing.T) {
	gen := &llmtest.Generator{Reply: "```yaml\na: 1\n```"}
	client := NewCompletionClient(gen, time.Second, discardLogger())

	out := client.Complete(context.Background(), entity.CompletionRequest{
		Prompt:      "convert",
		SystemRole:  "You are a precise data conversion utility.",
		Temperature: entity.DefaultTemperature,
	})

	assert.Equal(t, "```yaml\na: 1\n```", out)
	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "convert", reqs[0].Prompt)
	assert.Equal(t, "You are a precise data conversion utility.", reqs[0].SystemRole)
	assert.InDelta(t, 0.2, reqs[0].Temperature, 1e-6)
}

func TestCompletionClient_DefaultSystemRole(t *testing.T) {
	gen := &llmtest.Generator{Reply: "ok"}
	client := NewCompletionClient(gen, 0, discardLogger())

	client.Complete(context.Background(), entity.CompletionRequest{Prompt: "p", SystemRole: "  "})

	require.Equal(t, 1, gen.Calls())
	assert.Equal(t, prompt.DefaultSystemRole, gen.Requests()[0].SystemRole)
}

func TestCompletionClient_FaultBecomesText(t *testing.T) {
	gen := &llmtest.Generator{Err: errors.New("quota exceeded")}
	client := NewCompletionClient(gen, time.Second, discardLogger())

	out := client.Complete(context.Background(), entity.CompletionRequest{Prompt: "p"})

	assert.Equal(t, "Error generating content: quota exceeded", out)
	assert.True(t, entity.IsFailureText(out))
}

func TestCompletionClient_EmptyReply(t *testing.T) {
	gen := &llmtest.Generator{Reply: "  \n"}
	client := NewCompletionClient(gen, time.Second, discardLogger())

	out := client.Complete(context.Background(), entity.CompletionRequest{Prompt: "p"})

	assert.Equal(t, entity.NoResponseText, out)
	assert.True(t, entity.IsFailureText(out))
}

func TestCompletionClient_Timeout(t *testing.T) {
	gen := &llmtest.Generator{Hook: func(ctx context.Context, _ entity.CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	client := NewCompletionClient(gen, 20*time.Millisecond, discardLogger())

	out := client.Complete(context.Background(), entity.CompletionRequest{Prompt: "p"})

	assert.True(t, strings.HasPrefix(out, entity.CompletionErrorPrefix))
	assert.Contains(t, out, "deadline exceeded")
}
