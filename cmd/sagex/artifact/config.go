package artifact

const (
	ModelConfigFileName = "sagex.yaml"
	ReadmeFileName      = "README.md"
	EntryPointFileName  = "train.py"

	AnnotationDescription = "sagex.model.description"
	AnnotationMaintainers = "sagex.model.maintainers"
)

type ModelConfig struct {
	Description string            `json:"description"`
	FrameWork   string            `json:"framework"`
	Task        string            `json:"task"`
	Tags        []string          `json:"tags"`
	Resources   map[string]any    `json:"resources"`
	Maintainers []string          `json:"maintainers"`
	Annotations map[string]string `json:"annotations,omitempty"`
	ModelFiles  []string          `json:"modelFiles"`
	Config      any               `json:"config"`
}
