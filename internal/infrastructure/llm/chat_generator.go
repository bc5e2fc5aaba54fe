package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"devkit/internal/domain/entity"
	"devkit/internal/infrastructure/metrics"
)

const DefaultChatURL = "https://api.openai.com/v1/chat/completions"

// ChatGenerator talks to any OpenAI-compatible chat-completions endpoint.
type ChatGenerator struct {
	apiKey     string
	url        string
	model      string
	authHeader string
	maxTokens  int
	client     *http.Client
}

func NewChatGenerator(opts Options) *ChatGenerator {
	url := opts.BaseURL
	if url == "" {
		url = DefaultChatURL
	}
	authHeader := opts.AuthHeader
	if authHeader == "" {
		authHeader = "Authorization"
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &ChatGenerator{
		apiKey:     opts.APIKey,
		url:        url,
		model:      opts.Model,
		authHeader: authHeader,
		maxTokens:  maxTokens,
		client:     &http.Client{},
	}
}

func (g *ChatGenerator) Provider() string { return ProviderOpenAI }

func (g *ChatGenerator) Model() string { return g.model }

func (g *ChatGenerator) Generate(ctx context.Context, req entity.CompletionRequest) (string, error) {
	request := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": req.SystemRole,
			},
			{
				"role":    "user",
				"content": req.Prompt,
			},
		},
		"temperature": req.Temperature,
		"max_tokens":  g.maxTokens,
	}

	response, err := g.makeRequest(ctx, request)
	if err != nil {
		return "", err
	}

	content, err := parseChatResponse(response)
	if err != nil {
		metrics.IncError("llm", "parse_response")
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	return content, nil
}

func (g *ChatGenerator) makeRequest(ctx context.Context, request map[string]interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		metrics.IncError("llm", "marshal_request")
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewBuffer(jsonData))
	if err != nil {
		metrics.IncError("llm", "create_request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(g.authHeader, "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.IncError("llm", "http_do")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			log.Printf("close body err: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.IncError("llm", fmt.Sprintf("api_error_%d", resp.StatusCode))
		return nil, fmt.Errorf("chat api error: %d - %s", resp.StatusCode, string(body))
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		metrics.IncError("llm", "decode_response")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response, nil
}

func parseChatResponse(response map[string]interface{}) (string, error) {
	choices, ok := response["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("invalid response format: no choices")
	}

	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid response format: invalid choice")
	}

	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid response format: no message")
	}

	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("invalid response format: no content")
	}

	return content, nil
}
