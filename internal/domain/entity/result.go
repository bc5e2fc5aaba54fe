package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResultState string

const (
	ResultSuccess ResultState = "success"
	ResultFailure ResultState = "failure"
)

// ToolResult is the outcome of one tool invocation: either Output or Error is set.
type ToolResult struct {
	RequestID string      `json:"request_id"`
	Tool      ToolType    `json:"tool"`
	State     ResultState `json:"state"`
	Output    string      `json:"output"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewSuccess(tool ToolType, output string) ToolResult {
	return ToolResult{
		RequestID: uuid.NewString(),
		Tool:      tool,
		State:     ResultSuccess,
		Output:    output,
		CreatedAt: time.Now().UTC(),
	}
}

func NewFailure(tool ToolType, msg string) ToolResult {
	return ToolResult{
		RequestID: uuid.NewString(),
		Tool:      tool,
		State:     ResultFailure,
		Error:     msg,
		CreatedAt: time.Now().UTC(),
	}
}

func (r ToolResult) Failed() bool {
	return r.State == ResultFailure
}
