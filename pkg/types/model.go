package types

import "fmt"

// Model is a deployable descriptor: a serving container image plus the
// model artifact it loads.
type Model struct {
	Name                   string     `json:"name"`
	PrimaryContainer       Container  `json:"primaryContainer"`
	Role                   string     `json:"role,omitempty"`
	VPCConfig              *VPCConfig `json:"vpcConfig,omitempty"`
	EnableNetworkIsolation bool       `json:"enableNetworkIsolation"`
}

type Container struct {
	Image       string            `json:"image"`
	ModelData   *ArtifactRef      `json:"modelData,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

func (m Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if m.PrimaryContainer.Image == "" {
		return fmt.Errorf("model %s: container image is required", m.Name)
	}
	if m.PrimaryContainer.ModelData.Empty() {
		return fmt.Errorf("model %s: model data artifact is required", m.Name)
	}
	return nil
}
