package artifact

import (
	"errors"
	"path"

	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
)

func NewPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull an artifact version into a local directory",
		Example: `
  sagex artifact pull my-platform/jobs/mnist-20260825-120000@latest ./out
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required")
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
			into := path.Base(reference.Repository)
			if len(args) > 1 {
				into = args[1]
			}
			return cli.Pull(ctx, reference.Repository, version, into)
		},
	}
	return cmd
}
