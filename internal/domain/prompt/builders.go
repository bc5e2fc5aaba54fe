// Package prompt turns typed tool requests into instructions for the completion model.
//
// Builders are pure: they never validate and never fail. Empty fields become empty
// segments of the instruction.
package prompt

import (
	"fmt"

	"devkit/internal/domain/entity"
)

const DefaultSystemRole = "You are an expert Senior DevOps Engineer. Provide clean, production-ready code or explanations."

const (
	conversionRole = "You are a precise data conversion utility."
	cronRole       = "You are a Cron job expert."
	terminalRole   = "You are a terminal helper."
)

// Conversion asks for a YAML<->JSON conversion wrapped in a code fence.
func Conversion(req entity.ConversionRequest) entity.Prompt {
	text := fmt.Sprintf(`Convert the following %s. Wrap the result in a markdown code block.

Input:
%s`, req.Direction.Label(), req.Content)

	return entity.Prompt{Tool: entity.ToolYAMLJSON, Instruction: text, SystemRole: conversionRole}
}

// Cron lets the model decide whether the input is an expression or a description.
func Cron(req entity.CronRequest) entity.Prompt {
	text := fmt.Sprintf(`The user has provided: "%s".
If it is a Cron expression, explain what it means in plain English.
If it is a plain English description, provide the valid Cron expression (standard 5 fields).
Return ONLY the result (Expression or Explanation).`, req.Input)

	return entity.Prompt{Tool: entity.ToolCron, Instruction: text, SystemRole: cronRole}
}

func Dockerfile(req entity.DockerfileRequest) entity.Prompt {
	text := fmt.Sprintf(`Generate a production-ready Dockerfile for a %s application (version %s).
- Expose Port: %s
- Environment Variables: %s
- Additional Requirements: %s

Use multi-stage builds if applicable (e.g., for Go or Node).
Return ONLY the Dockerfile code in a markdown block.`,
		req.Language, req.Version, req.Port, req.EnvVars, req.Extras)

	return entity.Prompt{Tool: entity.ToolDockerfile, Instruction: text, SystemRole: DefaultSystemRole}
}

// K8sManifest includes fixed resource guidance; the values are not checked afterwards.
func K8sManifest(req entity.K8sManifestRequest) entity.Prompt {
	text := fmt.Sprintf(`Generate a Kubernetes %s manifest.
- Name: %s
- Namespace: %s
- Image: %s
- Replicas: %d
- Container Port: %d

Include standard resource limits (CPU: 250m, Memory: 512Mi) and requests.
Return ONLY the YAML code in a markdown block.`,
		req.Kind, req.Name, req.Namespace, req.Image, req.Replicas, req.Port)

	return entity.Prompt{Tool: entity.ToolK8sManifest, Instruction: text, SystemRole: DefaultSystemRole}
}

func SSHCommand(req entity.SSHKeyRequest) entity.Prompt {
	alg := req.Algorithm
	if alg == "" {
		alg = entity.KeyEd25519
	}
	keySize := ""
	if alg == entity.KeyRSA {
		keySize = "\n- Key size: 4096 bits"
	}

	text := fmt.Sprintf(`Generate the exact terminal command to generate an SSH key pair.
- Type: %s%s
- Comment/Email: %s
- File path: standard default (~/.ssh/id_%s)

Return ONLY the command string.`, alg, keySize, req.Comment, alg)

	return entity.Prompt{Tool: entity.ToolSSH, Instruction: text, SystemRole: terminalRole}
}
