package entity

import "strings"

// DefaultTemperature keeps generated code close to deterministic.
const DefaultTemperature float32 = 0.2

// Failure texts produced at the completion boundary instead of Go errors.
const (
	CompletionErrorPrefix = "Error generating content: "
	NoResponseText        = "No response generated."
)

// Prompt is the instruction/system-role pair sent for one tool call.
type Prompt struct {
	Tool        ToolType
	Instruction string
	SystemRole  string
}

type CompletionRequest struct {
	Prompt      string
	SystemRole  string
	Temperature float32
}

func NewCompletionRequest(p Prompt) CompletionRequest {
	return CompletionRequest{
		Prompt:      p.Instruction,
		SystemRole:  p.SystemRole,
		Temperature: DefaultTemperature,
	}
}

// IsFailureText reports whether a completion reply carries the failure marker.
func IsFailureText(text string) bool {
	return strings.HasPrefix(text, "Error") || strings.Contains(text, "No response")
}
