package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devkit/internal/domain/entity"
	"devkit/internal/infrastructure/llm"
	"devkit/internal/infrastructure/llm/llmtest"
)

func newTestService(gen *llmtest.Generator) *ToolService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewToolService(llm.NewCompletionClient(gen, time.Second, logger), logger)
}

func TestGenerateDockerfile_EndToEnd(t *testing.T) {
	gen := &llmtest.Generator{Reply: "```dockerfile\nFROM node:18-alpine\nWORKDIR /app\nEXPOSE 3000\n```"}
	svc := newTestService(gen)

	req := entity.DockerfileRequest{
		Language: "Node.js",
		Version:  "18-alpine",
		Port:     "3000",
		EnvVars:  "NODE_ENV=production",
		Extras:   "",
	}
	res := svc.GenerateDockerfile(context.Background(), req)

	require.Equal(t, entity.ResultSuccess, res.State)
	assert.Equal(t, "FROM node:18-alpine\nWORKDIR /app\nEXPOSE 3000", res.Output)
	assert.Empty(t, res.Error)
	assert.NotEmpty(t, res.RequestID)

	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	for _, v := range []string{"Node.js", "18-alpine", "3000", "NODE_ENV=production"} {
		assert.Contains(t, reqs[0].Prompt, v)
	}
	assert.InDelta(t, 0.2, reqs[0].Temperature, 1e-6)
}

func TestRemoteFault_RendersFailure(t *testing.T) {
	gen := &llmtest.Generator{Err: errors.New("permission denied: API key not valid")}
	svc := newTestService(gen)

	res := svc.GenerateK8sManifest(context.Background(), entity.DefaultK8sManifestRequest())

	assert.True(t, res.Failed())
	assert.True(t, strings.HasPrefix(res.Error, entity.CompletionErrorPrefix))
	assert.Contains(t, res.Error, "API key not valid")
	assert.Empty(t, res.Output)
}

func TestEmptyReply_RendersFailure(t *testing.T) {
	svc := newTestService(&llmtest.Generator{Reply: ""})

	res := svc.TranslateCron(context.Background(), entity.CronRequest{Input: "*/15 * * * *"})

	assert.True(t, res.Failed())
	assert.Equal(t, entity.NoResponseText, res.Error)
}

func TestConvertYAMLJSON_JSONPrecheck(t *testing.T) {
	gen := &llmtest.Generator{Reply: "```yaml\na: 1\n```"}
	svc := newTestService(gen)

	res := svc.ConvertYAMLJSON(context.Background(), entity.ConversionRequest{
		Content:   "{invalid}",
		Direction: entity.DirectionJSONToYAML,
	})
	assert.True(t, res.Failed())
	assert.True(t, strings.HasPrefix(res.Error, "Invalid JSON input: "))
	assert.Zero(t, gen.Calls())

	res = svc.ConvertYAMLJSON(context.Background(), entity.ConversionRequest{
		Content:   `{"a":1}`,
		Direction: entity.DirectionJSONToYAML,
	})
	require.False(t, res.Failed())
	assert.Equal(t, "a: 1", res.Output)
	require.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.Requests()[0].Prompt, "JSON to YAML")
	assert.Contains(t, gen.Requests()[0].Prompt, `{"a":1}`)
}

func TestConvertYAMLJSON_YAMLIsNotPrechecked(t *testing.T) {
	gen := &llmtest.Generator{Reply: "```json\n{\"a\": 1}\n```"}
	svc := newTestService(gen)

	res := svc.ConvertYAMLJSON(context.Background(), entity.ConversionRequest{
		Content:   "a: 1",
		Direction: entity.DirectionYAMLToJSON,
	})

	require.False(t, res.Failed())
	assert.Equal(t, `{"a": 1}`, res.Output)
	assert.Equal(t, 1, gen.Calls())
}

func TestEmptyInputs_NoRemoteCall(t *testing.T) {
	gen := &llmtest.Generator{Reply: "unused"}
	svc := newTestService(gen)
	ctx := context.Background()

	results := []entity.ToolResult{
		svc.ConvertYAMLJSON(ctx, entity.ConversionRequest{Content: "  "}),
		svc.TranslateCron(ctx, entity.CronRequest{Input: "\n"}),
		svc.GenerateSSHCommand(ctx, entity.SSHKeyRequest{Algorithm: entity.KeyRSA}),
	}
	for _, res := range results {
		assert.True(t, res.Failed(), res.Tool)
		assert.NotEmpty(t, res.Error, res.Tool)
	}
	assert.Equal(t, msgEmptyConversion, results[0].Error)
	assert.Zero(t, gen.Calls())
}

func TestBase64Tool(t *testing.T) {
	svc := newTestService(&llmtest.Generator{})

	enc := svc.Base64(entity.Base64Request{Text: "hello", Mode: entity.Base64Encode})
	require.False(t, enc.Failed())
	assert.Equal(t, "aGVsbG8=", enc.Output)

	dec := svc.Base64(entity.Base64Request{Text: enc.Output, Mode: entity.Base64Decode})
	require.False(t, dec.Failed())
	assert.Equal(t, "hello", dec.Output)

	bad := svc.Base64(entity.Base64Request{Text: "not base64!!", Mode: entity.Base64Decode})
	assert.True(t, bad.Failed())
	assert.Equal(t, MsgInvalidBase64, bad.Error)
	assert.Empty(t, bad.Output)

	empty := svc.Base64(entity.Base64Request{Mode: entity.Base64Decode})
	assert.False(t, empty.Failed())
	assert.Empty(t, empty.Output)

	unknown := svc.Base64(entity.Base64Request{Text: "x", Mode: "rot13"})
	assert.True(t, unknown.Failed())
}

func TestPanicInHandler_FallbackMessage(t *testing.T) {
	gen := &llmtest.Generator{Hook: func(context.Context, entity.CompletionRequest) (string, error) {
		panic("boom")
	}}
	svc := newTestService(gen)
	ctx := context.Background()

	tests := []struct {
		res  entity.ToolResult
		want string
	}{
		{svc.ConvertYAMLJSON(ctx, entity.ConversionRequest{Content: "a: 1"}), msgConversionFailed},
		{svc.TranslateCron(ctx, entity.CronRequest{Input: "@daily"}), msgCronFailed},
		{svc.GenerateDockerfile(ctx, entity.DefaultDockerfileRequest()), msgDockerfileFailed},
		{svc.GenerateK8sManifest(ctx, entity.DefaultK8sManifestRequest()), msgManifestFailed},
		{svc.GenerateSSHCommand(ctx, entity.SSHKeyRequest{Comment: "me@example.com"}), msgSSHFailed},
	}
	for _, tt := range tests {
		assert.True(t, tt.res.Failed(), tt.want)
		assert.Equal(t, tt.want, tt.res.Error)
	}
}

func TestInvoke(t *testing.T) {
	gen := &llmtest.Generator{Reply: "```yaml\nkind: Deployment\n```"}
	svc := newTestService(gen)
	ctx := context.Background()

	res, err := svc.Invoke(ctx, entity.ToolK8sManifest, json.RawMessage(`{"name":"web","replicas":5}`))
	require.NoError(t, err)
	assert.Equal(t, "kind: Deployment", res.Output)
	p := gen.Requests()[0].Prompt
	assert.Contains(t, p, "- Name: web")
	assert.Contains(t, p, "- Replicas: 5")
	assert.Contains(t, p, "- Image: nginx:latest")

	res, err = svc.Invoke(ctx, entity.ToolBase64, json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "aGk=", res.Output)

	_, err = svc.Invoke(ctx, entity.ToolCron, json.RawMessage(`{"input":`))
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = svc.Invoke(ctx, "dashboard", nil)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestCatalog(t *testing.T) {
	svc := newTestService(&llmtest.Generator{})

	infos := svc.Catalog()
	require.Len(t, infos, len(entity.Tools))
	for i, info := range infos {
		assert.Equal(t, entity.Tools[i], info.ID)
		assert.NotEmpty(t, info.Label)
	}
	assert.False(t, infos[1].Remote)
	assert.Equal(t, entity.DefaultDockerfileRequest(), infos[4].Defaults)
}

func TestEstimateResources(t *testing.T) {
	svc := newTestService(&llmtest.Generator{})
	est := svc.EstimateResources(4)
	assert.InDelta(t, 2.0, est.CPUCores.Limit, 1e-9)
	assert.InDelta(t, 1024, est.MemMiB.Requested, 1e-9)
}
