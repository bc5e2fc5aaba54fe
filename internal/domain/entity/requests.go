package entity

// Direction of a YAML/JSON conversion.
type Direction string

const (
	DirectionYAMLToJSON Direction = "yaml2json"
	DirectionJSONToYAML Direction = "json2yaml"
)

func (d Direction) Label() string {
	if d == DirectionJSONToYAML {
		return "JSON to YAML"
	}
	return "YAML to JSON"
}

func (d Direction) Flip() Direction {
	if d == DirectionJSONToYAML {
		return DirectionYAMLToJSON
	}
	return DirectionJSONToYAML
}

type ConversionRequest struct {
	Content   string    `json:"content"`
	Direction Direction `json:"direction"`
}

type Base64Mode string

const (
	Base64Encode Base64Mode = "encode"
	Base64Decode Base64Mode = "decode"
)

// normalized maps the empty mode to encode.
func (m Base64Mode) normalized() Base64Mode {
	if m == "" {
		return Base64Encode
	}
	return m
}

type Base64Request struct {
	Text string     `json:"text"`
	Mode Base64Mode `json:"mode"`
}

// CronRequest carries either a cron expression or a plain English schedule.
type CronRequest struct {
	Input string `json:"input"`
}

var CronExamples = []string{
	"*/15 * * * *",
	"Every Friday at 5pm",
	"0 0 1 1 *",
	"Run every 5 minutes between 9am and 5pm",
}

type DockerfileRequest struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Port     string `json:"port"`
	EnvVars  string `json:"env_vars"`
	Extras   string `json:"extras"`
}

var DockerfileLanguages = []string{
	"Node.js",
	"Python",
	"Go (Golang)",
	"Rust",
	"Java (Spring Boot)",
	"Nginx (Static Site)",
}

func DefaultDockerfileRequest() DockerfileRequest {
	return DockerfileRequest{
		Language: "Node.js",
		Version:  "18-alpine",
		Port:     "3000",
		EnvVars:  "NODE_ENV=production",
	}
}

type K8sKind string

const (
	K8sDeployment  K8sKind = "Deployment"
	K8sService     K8sKind = "Service"
	K8sPod         K8sKind = "Pod"
	K8sStatefulSet K8sKind = "StatefulSet"
)

var K8sKinds = []K8sKind{K8sDeployment, K8sService, K8sPod, K8sStatefulSet}

// Replica bounds offered to form controls. The server does not enforce them.
const (
	MinReplicas = 1
	MaxReplicas = 50
)

type K8sManifestRequest struct {
	Kind      K8sKind `json:"kind"`
	Name      string  `json:"name"`
	Namespace string  `json:"namespace"`
	Image     string  `json:"image"`
	Replicas  int     `json:"replicas"`
	Port      int     `json:"port"`
}

func DefaultK8sManifestRequest() K8sManifestRequest {
	return K8sManifestRequest{
		Kind:      K8sDeployment,
		Name:      "my-app",
		Namespace: "default",
		Image:     "nginx:latest",
		Replicas:  3,
		Port:      80,
	}
}

type KeyAlgorithm string

const (
	KeyEd25519 KeyAlgorithm = "ed25519"
	KeyRSA     KeyAlgorithm = "rsa"
)

var KeyAlgorithms = []KeyAlgorithm{KeyEd25519, KeyRSA}

type SSHKeyRequest struct {
	Comment   string       `json:"comment"`
	Algorithm KeyAlgorithm `json:"algorithm"`
}
