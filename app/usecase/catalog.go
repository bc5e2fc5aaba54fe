package usecase

import "devkit/internal/domain/entity"

type replicaBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Catalog describes every tool with the defaults and choices its form starts from.
func (s *ToolService) Catalog() []entity.ToolInfo {
	infos := make([]entity.ToolInfo, 0, len(entity.Tools))
	for _, t := range entity.Tools {
		info := entity.ToolInfo{ID: t, Label: t.Label(), Remote: t.Remote()}
		switch t {
		case entity.ToolYAMLJSON:
			info.Defaults = entity.ConversionRequest{Direction: entity.DirectionYAMLToJSON}
			info.Options = map[string]any{
				"directions": []entity.Direction{entity.DirectionYAMLToJSON, entity.DirectionJSONToYAML},
			}
		case entity.ToolBase64:
			info.Defaults = entity.Base64Request{Mode: entity.Base64Encode}
			info.Options = map[string]any{
				"modes": []entity.Base64Mode{entity.Base64Encode, entity.Base64Decode},
			}
		case entity.ToolCron:
			info.Options = map[string]any{"examples": entity.CronExamples}
		case entity.ToolSSH:
			info.Defaults = entity.SSHKeyRequest{Algorithm: entity.KeyEd25519}
			info.Options = map[string]any{"algorithms": entity.KeyAlgorithms}
		case entity.ToolDockerfile:
			info.Defaults = entity.DefaultDockerfileRequest()
			info.Options = map[string]any{"languages": entity.DockerfileLanguages}
		case entity.ToolK8sManifest:
			info.Defaults = entity.DefaultK8sManifestRequest()
			info.Options = map[string]any{
				"kinds":    entity.K8sKinds,
				"replicas": replicaBounds{Min: entity.MinReplicas, Max: entity.MaxReplicas},
			}
		}
		infos = append(infos, info)
	}
	return infos
}
