package entity

import "fmt"

// ToolType identifies one of the toolkit views.
type ToolType string

const (
	ToolYAMLJSON    ToolType = "yaml-json"
	ToolBase64      ToolType = "base64"
	ToolCron        ToolType = "cron"
	ToolSSH         ToolType = "ssh"
	ToolDockerfile  ToolType = "dockerfile"
	ToolK8sManifest ToolType = "k8s"
)

// Tools lists the views in navigation order.
var Tools = []ToolType{
	ToolYAMLJSON,
	ToolBase64,
	ToolCron,
	ToolSSH,
	ToolDockerfile,
	ToolK8sManifest,
}

var toolLabels = map[ToolType]string{
	ToolYAMLJSON:    "YAML <> JSON",
	ToolBase64:      "Base64 Tool",
	ToolCron:        "Cron Helper",
	ToolSSH:         "SSH Helper",
	ToolDockerfile:  "Dockerfile Gen",
	ToolK8sManifest: "K8s Manifest",
}

func ParseToolType(s string) (ToolType, error) {
	t := ToolType(s)
	if _, ok := toolLabels[t]; !ok {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return t, nil
}

func (t ToolType) Label() string {
	return toolLabels[t]
}

// Remote reports whether the tool needs the completion service.
func (t ToolType) Remote() bool {
	return t != ToolBase64
}

// ToolInfo describes a tool for clients building their forms.
type ToolInfo struct {
	ID       ToolType `json:"id"`
	Label    string   `json:"label"`
	Remote   bool     `json:"remote"`
	Defaults any      `json:"defaults,omitempty"`
	Options  any      `json:"options,omitempty"`
}
