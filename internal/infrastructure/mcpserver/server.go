// Package mcpserver exposes the toolkit over the Model Context Protocol.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"devkit/app/usecase"
	"devkit/internal/domain/entity"
)

type ConvertArgs struct {
	Content   string `json:"content" jsonschema:"YAML or JSON document to convert"`
	Direction string `json:"direction,omitempty" jsonschema:"yaml2json (default) or json2yaml"`
}

type Base64Args struct {
	Text string `json:"text" jsonschema:"text to encode or Base64 string to decode"`
	Mode string `json:"mode,omitempty" jsonschema:"encode (default) or decode"`
}

type CronArgs struct {
	Input string `json:"input" jsonschema:"cron expression or plain English schedule"`
}

type DockerfileArgs struct {
	Language string `json:"language,omitempty" jsonschema:"language or framework, e.g. Node.js"`
	Version  string `json:"version,omitempty" jsonschema:"runtime version or base image tag"`
	Port     string `json:"port,omitempty" jsonschema:"port to expose"`
	EnvVars  string `json:"env_vars,omitempty" jsonschema:"environment variables, KEY=VALUE"`
	Extras   string `json:"extras,omitempty" jsonschema:"extra requirements"`
}

type ManifestArgs struct {
	Kind      string `json:"kind,omitempty" jsonschema:"Deployment, Service, Pod or StatefulSet"`
	Name      string `json:"name,omitempty" jsonschema:"resource name"`
	Namespace string `json:"namespace,omitempty" jsonschema:"namespace"`
	Image     string `json:"image,omitempty" jsonschema:"container image"`
	Replicas  int    `json:"replicas,omitempty" jsonschema:"replica count"`
	Port      int    `json:"port,omitempty" jsonschema:"container port"`
}

type SSHArgs struct {
	Comment   string `json:"comment" jsonschema:"key comment, usually an email"`
	Algorithm string `json:"algorithm,omitempty" jsonschema:"ed25519 (default) or rsa"`
}

type handlers struct {
	tools usecase.ToolUsecase
}

// NewServer registers one MCP tool per toolkit tool.
func NewServer(tools usecase.ToolUsecase, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "devkit", Version: version}, nil)
	h := &handlers{tools: tools}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "yaml_json_convert",
		Description: "Convert a document between YAML and JSON",
	}, h.Convert)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "base64",
		Description: "Encode text to Base64 or decode a Base64 string",
	}, h.Base64)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cron_translate",
		Description: "Explain a cron expression or turn a schedule description into one",
	}, h.Cron)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "dockerfile_generate",
		Description: "Generate a production Dockerfile",
	}, h.Dockerfile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "k8s_manifest_generate",
		Description: "Generate a Kubernetes manifest",
	}, h.Manifest)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ssh_keygen_command",
		Description: "Produce the ssh-keygen command for a new key pair",
	}, h.SSH)

	return server
}

func (h *handlers) Convert(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ConvertArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	req := entity.ConversionRequest{Content: args.Content, Direction: entity.DirectionYAMLToJSON}
	if args.Direction != "" {
		req.Direction = entity.Direction(args.Direction)
	}
	return toResult(h.tools.ConvertYAMLJSON(ctx, req)), nil
}

func (h *handlers) Base64(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[Base64Args]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	return toResult(h.tools.Base64(entity.Base64Request{Text: args.Text, Mode: entity.Base64Mode(args.Mode)})), nil
}

func (h *handlers) Cron(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[CronArgs]) (*mcp.CallToolResultFor[any], error) {
	return toResult(h.tools.TranslateCron(ctx, entity.CronRequest{Input: params.Arguments.Input})), nil
}

func (h *handlers) Dockerfile(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[DockerfileArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	req := entity.DefaultDockerfileRequest()
	setIfNotEmpty(&req.Language, args.Language)
	setIfNotEmpty(&req.Version, args.Version)
	setIfNotEmpty(&req.Port, args.Port)
	setIfNotEmpty(&req.EnvVars, args.EnvVars)
	setIfNotEmpty(&req.Extras, args.Extras)
	return toResult(h.tools.GenerateDockerfile(ctx, req)), nil
}

func (h *handlers) Manifest(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ManifestArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	req := entity.DefaultK8sManifestRequest()
	if args.Kind != "" {
		req.Kind = entity.K8sKind(args.Kind)
	}
	setIfNotEmpty(&req.Name, args.Name)
	setIfNotEmpty(&req.Namespace, args.Namespace)
	setIfNotEmpty(&req.Image, args.Image)
	if args.Replicas != 0 {
		req.Replicas = args.Replicas
	}
	if args.Port != 0 {
		req.Port = args.Port
	}
	return toResult(h.tools.GenerateK8sManifest(ctx, req)), nil
}

func (h *handlers) SSH(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[SSHArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	req := entity.SSHKeyRequest{Comment: args.Comment, Algorithm: entity.KeyEd25519}
	if args.Algorithm != "" {
		req.Algorithm = entity.KeyAlgorithm(args.Algorithm)
	}
	return toResult(h.tools.GenerateSSHCommand(ctx, req)), nil
}

func toResult(res entity.ToolResult) *mcp.CallToolResultFor[any] {
	if res.Failed() {
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Error}},
			IsError: true,
		}
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Output}},
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
