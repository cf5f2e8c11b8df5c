package train

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/estimator"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func NewTrainRunCmd() *cobra.Command {
	e := &estimator.Estimator{
		InstanceCount: 1,
	}
	hyperparameters := map[string]string{}
	channels := map[string]string{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Package a source directory and run it as a training job",
		Example: `
  sagex train run my-platform \
    --entry-point train.py --source-dir ./src \
    --image jax-training:latest \
    --hyperparameter epochs=3 --hyperparameter learning_rate=0.001 \
    --channel train=/data/mnist
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			cli, err := repo.ResolveClient(args[0])
			if err != nil {
				return err
			}
			e.Session = cli
			e.HyperParameters = types.HyperParameters(hyperparameters)

			if err := e.Fit(ctx, channels); err != nil {
				return err
			}
			job := e.LatestTrainingJob()
			fmt.Fprintf(cmd.OutOrStdout(), "training job %s completed, artifact %s\n",
				job.Name, job.Status.ModelArtifacts.Digest)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&e.EntryPoint, "entry-point", e.EntryPoint, "training script inside the source directory")
	flags.StringVar(&e.SourceDir, "source-dir", ".", "local source directory to package")
	flags.StringVar(&e.TrainingImage, "image", e.TrainingImage, "training image")
	flags.StringVar(&e.Role, "role", e.Role, "execution role")
	flags.StringVar(&e.BaseJobName, "base-job-name", e.BaseJobName, "prefix for the generated job name")
	flags.StringVar(&e.InstanceType, "instance-type", e.InstanceType, "instance type")
	flags.IntVar(&e.InstanceCount, "instance-count", e.InstanceCount, "instance count")
	flags.StringVar(&e.OutputPath, "output-path", e.OutputPath, "artifact output path")
	flags.DurationVar(&e.MaxRuntime, "max-runtime", e.MaxRuntime, "training wall clock limit, 0 for none")
	flags.StringVar(&e.ContainerLogLevel, "container-log-level", e.ContainerLogLevel, "log level forwarded to the container")
	flags.BoolVar(&e.EnableNetworkIsolation, "enable-network-isolation", e.EnableNetworkIsolation, "train without outbound network access")
	flags.DurationVar(&e.PollInterval, "poll-interval", 5*time.Second, "job status poll interval")
	flags.StringToStringVar(&hyperparameters, "hyperparameter", hyperparameters, "hyperparameter as name=value, repeatable")
	flags.StringToStringVar(&channels, "channel", channels, "input channel as name=source, repeatable")
	return cmd
}
