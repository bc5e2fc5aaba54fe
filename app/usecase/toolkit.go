package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devkit/internal/domain/entity"
	"devkit/internal/domain/prompt"
	"devkit/internal/infrastructure/llm"
	"devkit/internal/infrastructure/metrics"
)

// Messages shown when a tool handler fails unexpectedly.
const (
	msgConversionFailed = "An unexpected error occurred during conversion."
	msgCronFailed       = "Error processing cron expression."
	msgDockerfileFailed = "# Error generating Dockerfile. Please try again."
	msgManifestFailed   = "# Error generating Manifest."
	msgSSHFailed        = "Error generating command."
	msgBase64Failed     = "An unexpected error occurred during encoding."
)

// Messages for inputs rejected before any remote call.
const (
	msgEmptyConversion = "Please enter content to convert."
	msgEmptyCron       = "Please enter a cron expression or a schedule description."
	msgEmptySSHComment = "Please enter a comment or email for the key."
)

var ErrBadPayload = errors.New("bad tool payload")

// Completer is the completion boundary; faults come back as failure text.
type Completer interface {
	Complete(ctx context.Context, req entity.CompletionRequest) string
}

type ToolUsecase interface {
	ConvertYAMLJSON(ctx context.Context, req entity.ConversionRequest) entity.ToolResult
	Base64(req entity.Base64Request) entity.ToolResult
	TranslateCron(ctx context.Context, req entity.CronRequest) entity.ToolResult
	GenerateDockerfile(ctx context.Context, req entity.DockerfileRequest) entity.ToolResult
	GenerateK8sManifest(ctx context.Context, req entity.K8sManifestRequest) entity.ToolResult
	GenerateSSHCommand(ctx context.Context, req entity.SSHKeyRequest) entity.ToolResult
	Invoke(ctx context.Context, tool entity.ToolType, payload json.RawMessage) (entity.ToolResult, error)
	EstimateResources(replicas int) entity.ResourceEstimate
	Catalog() []entity.ToolInfo
}

var _ ToolUsecase = (*ToolService)(nil)

type ToolService struct {
	completer Completer
	logger    *slog.Logger
}

func NewToolService(completer Completer, logger *slog.Logger) *ToolService {
	return &ToolService{
		completer: completer,
		logger:    logger,
	}
}

func (s *ToolService) ConvertYAMLJSON(ctx context.Context, req entity.ConversionRequest) (res entity.ToolResult) {
	defer s.finish(entity.ToolYAMLJSON, time.Now(), &res, msgConversionFailed)

	if strings.TrimSpace(req.Content) == "" {
		return s.reject(entity.ToolYAMLJSON, "empty", msgEmptyConversion)
	}
	if req.Direction == entity.DirectionJSONToYAML {
		var v any
		if err := json.Unmarshal([]byte(req.Content), &v); err != nil {
			return s.reject(entity.ToolYAMLJSON, "invalid_json", "Invalid JSON input: "+err.Error())
		}
	}
	return s.complete(ctx, prompt.Conversion(req))
}

func (s *ToolService) Base64(req entity.Base64Request) (res entity.ToolResult) {
	defer s.finish(entity.ToolBase64, time.Now(), &res, msgBase64Failed)

	switch req.Mode {
	case entity.Base64Encode, "":
		return entity.NewSuccess(entity.ToolBase64, EncodeBase64(req.Text))
	case entity.Base64Decode:
		out, err := DecodeBase64(req.Text)
		if err != nil {
			return s.reject(entity.ToolBase64, "invalid_base64", MsgInvalidBase64)
		}
		return entity.NewSuccess(entity.ToolBase64, out)
	default:
		return s.reject(entity.ToolBase64, "bad_mode", fmt.Sprintf("Unknown mode %q.", req.Mode))
	}
}

func (s *ToolService) TranslateCron(ctx context.Context, req entity.CronRequest) (res entity.ToolResult) {
	defer s.finish(entity.ToolCron, time.Now(), &res, msgCronFailed)

	if strings.TrimSpace(req.Input) == "" {
		return s.reject(entity.ToolCron, "empty", msgEmptyCron)
	}
	return s.complete(ctx, prompt.Cron(req))
}

func (s *ToolService) GenerateDockerfile(ctx context.Context, req entity.DockerfileRequest) (res entity.ToolResult) {
	defer s.finish(entity.ToolDockerfile, time.Now(), &res, msgDockerfileFailed)

	return s.complete(ctx, prompt.Dockerfile(req))
}

func (s *ToolService) GenerateK8sManifest(ctx context.Context, req entity.K8sManifestRequest) (res entity.ToolResult) {
	defer s.finish(entity.ToolK8sManifest, time.Now(), &res, msgManifestFailed)

	return s.complete(ctx, prompt.K8sManifest(req))
}

func (s *ToolService) GenerateSSHCommand(ctx context.Context, req entity.SSHKeyRequest) (res entity.ToolResult) {
	defer s.finish(entity.ToolSSH, time.Now(), &res, msgSSHFailed)

	if strings.TrimSpace(req.Comment) == "" {
		return s.reject(entity.ToolSSH, "empty", msgEmptySSHComment)
	}
	return s.complete(ctx, prompt.SSHCommand(req))
}

// Invoke decodes a JSON payload for the given tool and runs it. Fields missing
// from the payload keep the tool's form defaults.
func (s *ToolService) Invoke(ctx context.Context, tool entity.ToolType, payload json.RawMessage) (entity.ToolResult, error) {
	switch tool {
	case entity.ToolYAMLJSON:
		req := entity.ConversionRequest{Direction: entity.DirectionYAMLToJSON}
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.ConvertYAMLJSON(ctx, req), nil
	case entity.ToolBase64:
		req := entity.Base64Request{Mode: entity.Base64Encode}
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.Base64(req), nil
	case entity.ToolCron:
		var req entity.CronRequest
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.TranslateCron(ctx, req), nil
	case entity.ToolDockerfile:
		req := entity.DefaultDockerfileRequest()
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.GenerateDockerfile(ctx, req), nil
	case entity.ToolK8sManifest:
		req := entity.DefaultK8sManifestRequest()
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.GenerateK8sManifest(ctx, req), nil
	case entity.ToolSSH:
		req := entity.SSHKeyRequest{Algorithm: entity.KeyEd25519}
		if err := decodePayload(payload, &req); err != nil {
			return entity.ToolResult{}, err
		}
		return s.GenerateSSHCommand(ctx, req), nil
	default:
		return entity.ToolResult{}, fmt.Errorf("%w: unknown tool %q", ErrBadPayload, tool)
	}
}

func (s *ToolService) EstimateResources(replicas int) entity.ResourceEstimate {
	return entity.EstimateResources(replicas)
}

func (s *ToolService) complete(ctx context.Context, p entity.Prompt) entity.ToolResult {
	raw := s.completer.Complete(ctx, entity.NewCompletionRequest(p))
	text := llm.ExtractPayload(raw)
	if entity.IsFailureText(text) {
		return entity.NewFailure(p.Tool, text)
	}
	return entity.NewSuccess(p.Tool, text)
}

func (s *ToolService) reject(tool entity.ToolType, reason, msg string) entity.ToolResult {
	metrics.IncLocalRejection(string(tool), reason)
	s.logger.Debug("input rejected locally", "tool", tool, "reason", reason)
	return entity.NewFailure(tool, msg)
}

// finish must be deferred directly so recover sees a handler panic.
func (s *ToolService) finish(tool entity.ToolType, start time.Time, res *entity.ToolResult, fallback string) {
	if r := recover(); r != nil {
		metrics.IncError("usecase", "panic")
		s.logger.Error("tool handler panicked", "tool", tool, "panic", r)
		*res = entity.NewFailure(tool, fallback)
	}
	metrics.ObserveTool(string(tool), string(res.State), time.Since(start))
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
