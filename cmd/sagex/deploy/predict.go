package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
)

func NewPredictCmd() *cobra.Command {
	datafile := ""
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Invoke an endpoint with a batch of instances",
		Long:  "Invoke an endpoint. Input is a JSON array of instances, from --data or stdin.",
		Example: `
  echo '[[0.1, 0.2], [0.3, 0.4]]' | sagex predict my-platform my-endpoint
  sagex predict my-platform my-endpoint --data instances.json
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) < 2 {
				return errors.New("server and endpoint name are required")
			}
			cli, err := repo.ResolveClient(args[0])
			if err != nil {
				return err
			}

			var raw []byte
			if datafile != "" {
				raw, err = os.ReadFile(datafile)
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			var instances []json.RawMessage
			if err := json.Unmarshal(raw, &instances); err != nil {
				return fmt.Errorf("input must be a JSON array of instances: %w", err)
			}

			out, err := cli.Remote.InvokeEndpoint(ctx, args[1], types.PredictInput{Instances: instances})
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(out.Predictions, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
	cmd.Flags().StringVar(&datafile, "data", datafile, "file with a JSON array of instances, stdin when empty")
	return cmd
}
