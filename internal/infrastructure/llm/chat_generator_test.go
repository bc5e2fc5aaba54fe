package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devkit/internal/domain/entity"
)

func TestChatGenerator_Generate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("X-Auth-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```bash\\nssh-keygen -t ed25519\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	gen := NewChatGenerator(Options{
		APIKey:     "secret",
		BaseURL:    srv.URL,
		Model:      "gpt-test",
		AuthHeader: "X-Auth-Token",
	})

	out, err := gen.Generate(context.Background(), entity.CompletionRequest{
		Prompt:      "make a key",
		SystemRole:  "You are a terminal helper.",
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "```bash\nssh-keygen -t ed25519\n```", out)

	assert.Equal(t, "gpt-test", got["model"])
	msgs, ok := got["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "make a key", msgs[1].(map[string]interface{})["content"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
}

func TestChatGenerator_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	gen := NewChatGenerator(Options{APIKey: "bad", BaseURL: srv.URL, Model: "m"})

	_, err := gen.Generate(context.Background(), entity.CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat api error: 401")
}

func TestParseChatResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{"ok", `{"choices":[{"message":{"content":"hi"}}]}`, "hi", ""},
		{"no choices", `{"choices":[]}`, "", "no choices"},
		{"no message", `{"choices":[{"text":"hi"}]}`, "", "no message"},
		{"no content", `{"choices":[{"message":{"content":null}}]}`, "", "no content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))

			got, err := parseChatResponse(resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	gen, err := NewGenerator(ctx, Options{Provider: ProviderOpenAI, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, gen.Provider())
	assert.Equal(t, "m", gen.Model())

	_, err = NewGenerator(ctx, Options{Provider: ProviderOpenAI, Model: "m"})
	assert.Error(t, err)

	_, err = NewGenerator(ctx, Options{Provider: ProviderGemini})
	assert.Error(t, err)

	_, err = NewGenerator(ctx, Options{Provider: "anthropic", APIKey: "k"})
	assert.Error(t, err)
}
