package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func NewInitCmd() *cobra.Command {
	force := false
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a model directory at path",
		Example: `
  sagex artifact init ./my-model
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			return InitModelDir(args[0], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "force init")
	return cmd
}

func InitModelDir(path string, force bool) error {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else if !force {
		return fmt.Errorf("path %s already exists", path)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create model directory:%s %w", path, err)
	}
	config := ModelConfig{
		Description: "This is a sagex model",
		FrameWork:   "<some framework>",
		Config: map[string]interface{}{
			"inputs":  map[string]interface{}{},
			"outputs": map[string]interface{}{},
		},
		Tags: []string{
			"sagex",
			"<other>",
		},
		Resources: map[string]any{
			"cpu":    "4",
			"memory": "16Gi",
		},
		Maintainers: []string{
			"maintainer",
		},
		ModelFiles: []string{},
	}
	configcontent, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode model config %w", err)
	}
	configfile := filepath.Join(path, ModelConfigFileName)
	if err := os.WriteFile(configfile, configcontent, 0o644); err != nil {
		return fmt.Errorf("write model config:%s %w", configfile, err)
	}

	readmefile := filepath.Join(path, ReadmeFileName)
	if _, err := os.Stat(readmefile); errors.Is(err, os.ErrNotExist) {
		readmecontent := fmt.Sprintf("# %s\n\nAwesome model description.\n", filepath.Base(path))
		os.WriteFile(readmefile, []byte(readmecontent), 0o644)
	}

	entryfile := filepath.Join(path, EntryPointFileName)
	if _, err := os.Stat(entryfile); errors.Is(err, os.ErrNotExist) {
		entrycontent := `import os

model_dir = os.environ.get("SM_MODEL_DIR", "model")

if __name__ == "__main__":
    # train here, then save into model_dir
    pass
`
		os.WriteFile(entryfile, []byte(entrycontent), 0o644)
	}

	fmt.Printf("Model directory initialized in %s\n", path)
	return nil
}
