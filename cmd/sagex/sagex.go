package main

import (
	"crypto/tls"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/artifact"
	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/deploy"
	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/train"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/version"
)

const ErrExitCode = 1

func main() {
	if err := NewSagexCmd().Execute(); err != nil {
		os.Exit(ErrExitCode)
	}
}

func NewSagexCmd() *cobra.Command {
	insecureSkipVerify := false
	cmd := &cobra.Command{
		Use:     "sagex",
		Short:   "sagex",
		Version: version.Get().String(),
	}
	cmd.AddCommand(
		repo.NewRepoCmd(),
		train.NewTrainCmd(),
		deploy.NewDeployCmd(),
		deploy.NewEndpointCmd(),
		deploy.NewPredictCmd(),
		artifact.NewArtifactCmd(),
	)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if insecureSkipVerify {
			http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
	}
	cmd.PersistentFlags().BoolVarP(&insecureSkipVerify, "insecure", "", insecureSkipVerify, "tls insecure skip verify")
	return cmd
}
