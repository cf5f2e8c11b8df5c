package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
)

func NewPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a local model directory as an artifact version",
		Example: `
  sagex artifact push my-platform/models/mnist@v1 ./model
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			dir := "."
			if len(args) > 1 {
				dir = args[1]
			}

			reference, cli, err := ResolveReference(args[0])
			if err != nil {
				return err
			}
			if reference.Repository == "" {
				return errors.New("reference must name a repository")
			}
			version := reference.Version
			if version == "" {
				version = "latest"
			}

			// annotations come from the model config when present
			annotations := map[string]string{}
			configfile := ""
			if configcontent, err := os.ReadFile(filepath.Join(dir, ModelConfigFileName)); err == nil {
				var config ModelConfig
				if err := yaml.Unmarshal(configcontent, &config); err != nil {
					return fmt.Errorf("parse model config:%s %w", ModelConfigFileName, err)
				}
				for k, v := range config.Annotations {
					annotations[k] = v
				}
				annotations[AnnotationDescription] = config.Description
				configfile = ModelConfigFileName
			}

			fmt.Printf("Pushing to %s \n", reference.String())
			return cli.Push(ctx, reference.Repository, version, configfile, dir, annotations)
		},
	}
	return cmd
}
