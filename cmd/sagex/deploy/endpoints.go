package deploy

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
)

func NewEndpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Endpoint management",
		Long:  "Endpoint management",
	}
	cmd.AddCommand(NewEndpointListCmd())
	cmd.AddCommand(NewEndpointDeleteCmd())
	cmd.AddCommand(NewModelListCmd())
	return cmd
}

func NewEndpointListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List endpoints",
		Example: `
  sagex endpoint list my-platform
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
			eps, err := cli.Remote.ListEndpoints(ctx)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Model", "State", "Created", "Reason"})
			for _, ep := range eps {
				t.AppendRow(table.Row{
					ep.Name,
					ep.ModelName,
					ep.Status.State,
					ep.Status.CreationTime.Format(time.RFC3339),
					ep.Status.FailureReason,
				})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}

func NewEndpointDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an endpoint",
		Example: `
  sagex endpoint delete my-platform mnist-20260825-120000
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
			return cli.Remote.DeleteEndpoint(ctx, args[1])
		},
	}
	return cmd
}

func NewModelListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered models",
		Example: `
  sagex endpoint models my-platform
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
			models, err := cli.Remote.ListModels(ctx)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Image", "Artifact", "Isolation"})
			for _, model := range models {
				digest := ""
				if !model.PrimaryContainer.ModelData.Empty() {
					digest = model.PrimaryContainer.ModelData.Digest.Encoded()[:16]
				}
				t.AppendRow(table.Row{
					model.Name,
					model.PrimaryContainer.Image,
					digest,
					model.EnableNetworkIsolation,
				})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}
