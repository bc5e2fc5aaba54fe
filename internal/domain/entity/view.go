package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrViewBusy = errors.New("a request for this tool is already in flight")

// ViewState is the input/output state of one tool view.
//
// Token increases on every submission and on every action that invalidates an
// in-flight call (swap, clear), so a result is accepted only if it carries the
// latest token.
type ViewState struct {
	Tool    ToolType        `json:"tool"`
	Request json.RawMessage `json:"request,omitempty"`
	Output  string          `json:"output"`
	Error   string          `json:"error,omitempty"`
	Loading bool            `json:"loading"`
	Token   uint64          `json:"token"`
}

// Begin marks the view as loading and returns the token the result must carry.
func (v *ViewState) Begin(request json.RawMessage) (uint64, error) {
	if v.Loading {
		return 0, ErrViewBusy
	}
	v.Token++
	v.Loading = true
	v.Request = request
	v.Output = ""
	v.Error = ""
	return v.Token, nil
}

// Settle applies a result. It returns false and leaves the view untouched when
// the token is stale.
func (v *ViewState) Settle(token uint64, res ToolResult) bool {
	if token != v.Token {
		return false
	}
	v.Loading = false
	if res.Failed() {
		v.Output = ""
		v.Error = res.Error
		return true
	}
	v.Output = res.Output
	v.Error = ""
	return true
}

func (v *ViewState) invalidate() {
	v.Token++
	v.Loading = false
}

func (v *ViewState) Clear() {
	v.invalidate()
	v.Request = nil
	v.Output = ""
	v.Error = ""
}

func (v *ViewState) Snapshot() ViewState {
	return *v
}

// Workspace owns the current-tool selector and one view per tool.
type Workspace struct {
	Current ToolType                `json:"current"`
	Views   map[ToolType]*ViewState `json:"views"`
}

func NewWorkspace() *Workspace {
	w := &Workspace{
		Current: ToolYAMLJSON,
		Views:   make(map[ToolType]*ViewState, len(Tools)),
	}
	for _, t := range Tools {
		w.Views[t] = &ViewState{Tool: t}
	}
	return w
}

func (w *Workspace) Select(tool ToolType) error {
	if _, ok := w.Views[tool]; !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}
	w.Current = tool
	return nil
}

func (w *Workspace) View(tool ToolType) (*ViewState, error) {
	v, ok := w.Views[tool]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	return v, nil
}

// SwapConversion moves the last conversion output into the input, flips the
// direction and drops any in-flight result.
func (w *Workspace) SwapConversion() error {
	v := w.Views[ToolYAMLJSON]

	var req ConversionRequest
	if len(v.Request) > 0 {
		if err := json.Unmarshal(v.Request, &req); err != nil {
			return fmt.Errorf("decode conversion request: %w", err)
		}
	}
	req.Content, v.Output = v.Output, req.Content
	req.Direction = req.Direction.Flip()

	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode conversion request: %w", err)
	}
	v.invalidate()
	v.Request = raw
	v.Error = ""
	return nil
}

// ApplyBase64Mode handles a mode switch on the Base64 view: when the submitted
// mode differs from the last request's, the view is cleared and the submitted
// text dropped. It returns the payload to run. Undecodable payloads are passed
// through for the caller to reject.
func (w *Workspace) ApplyBase64Mode(payload json.RawMessage) json.RawMessage {
	v := w.Views[ToolBase64]
	if len(v.Request) == 0 {
		return payload
	}
	var prev, next Base64Request
	if err := json.Unmarshal(v.Request, &prev); err != nil {
		return payload
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &next); err != nil {
			return payload
		}
	}
	if prev.Mode.normalized() == next.Mode.normalized() {
		return payload
	}

	v.Clear()
	next.Text = ""
	next.Mode = next.Mode.normalized()
	raw, err := json.Marshal(next)
	if err != nil {
		return payload
	}
	return raw
}
