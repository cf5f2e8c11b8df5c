package deploy

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/estimator"
)

func NewDeployCmd() *cobra.Command {
	var (
		servingImage string
		modelName    string
		role         string
		instanceType string
		instances    int
		isolation    bool
		logLevel     string
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a finished training job behind an endpoint",
		Example: `
  # serve the artifact of a finished job with a pre-built serving image
  sagex deploy my-platform mnist-20260825-120000 \
    --serving-image jax-serving:latest --instance-count 1
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) < 2 {
				return errors.New("server and job name are required")
			}
			cli, err := repo.ResolveClient(args[0])
			if err != nil {
				return err
			}

			e := &estimator.Estimator{
				Session:           cli,
				Role:              role,
				ContainerLogLevel: logLevel,
			}
			if servingImage != "" {
				e.ModelFactory = estimator.ServingImageModelFactory{Image: servingImage}
			}
			if err := e.Attach(ctx, args[1]); err != nil {
				return err
			}

			opts := estimator.ModelOptions{Name: modelName}
			if cmd.Flags().Changed("enable-network-isolation") {
				opts.EnableNetworkIsolation = &isolation
			}
			predictor, err := e.Deploy(ctx, instanceType, instances, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint %s is in service\n", predictor.Endpoint)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&servingImage, "serving-image", servingImage, "serving image, the training image serves when empty")
	flags.StringVar(&modelName, "model-name", modelName, "model name, defaults to the job name")
	flags.StringVar(&role, "role", role, "execution role")
	flags.StringVar(&instanceType, "instance-type", instanceType, "instance type")
	flags.IntVar(&instances, "instance-count", 1, "instance count")
	flags.BoolVar(&isolation, "enable-network-isolation", isolation, "serve without outbound network access")
	flags.StringVar(&logLevel, "container-log-level", logLevel, "log level forwarded to the serving container")
	return cmd
}
