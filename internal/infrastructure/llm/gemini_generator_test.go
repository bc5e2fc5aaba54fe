package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devkit/internal/domain/entity"
)

type capturedRequest struct {
	path   string
	apiKey string
	body   map[string]any
}

func newGeminiServer(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestGeminiGenerator_Generate(t *testing.T) {
	srv, captured := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"FROM node:18-alpine"}]}}]}`)

	gen, err := NewGeminiGenerator(context.Background(), "secret", "", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, gen.Model())
	assert.Equal(t, ProviderGemini, gen.Provider())

	out, err := gen.Generate(context.Background(), entity.CompletionRequest{
		Prompt:      "Write a Dockerfile",
		SystemRole:  "You are a precise data conversion utility.",
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "FROM node:18-alpine", out)

	assert.Contains(t, captured.path, "models/"+DefaultGeminiModel+":generateContent")
	assert.Equal(t, "secret", captured.apiKey)

	contents, ok := captured.body["contents"].([]any)
	require.True(t, ok, "contents: %v", captured.body)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "Write a Dockerfile", parts[0].(map[string]any)["text"])

	system, ok := captured.body["systemInstruction"].(map[string]any)
	require.True(t, ok, "systemInstruction: %v", captured.body)
	sysParts := system["parts"].([]any)
	assert.Equal(t, "You are a precise data conversion utility.", sysParts[0].(map[string]any)["text"])

	genCfg, ok := captured.body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig: %v", captured.body)
	assert.InDelta(t, 0.2, genCfg["temperature"], 1e-6)
}

func TestGeminiGenerator_NoSystemRole(t *testing.T) {
	srv, captured := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`)

	gen, err := NewGeminiGenerator(context.Background(), "secret", "gemini-test", srv.URL)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), entity.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Contains(t, captured.path, "models/gemini-test:generateContent")
	assert.NotContains(t, captured.body, "systemInstruction")
}

func TestGeminiGenerator_APIError(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)

	gen, err := NewGeminiGenerator(context.Background(), "bad", "", srv.URL)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), entity.CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GenAI generate failed")
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", "")
	assert.Error(t, err)
}
