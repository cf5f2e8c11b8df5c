package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
)

func NewTrainListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List training jobs",
		Example: `
  sagex train list my-platform
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
			jobs, err := cli.Remote.ListTrainingJobs(ctx)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "State", "Image", "Created", "Reason"})
			for _, job := range jobs {
				t.AppendRow(table.Row{
					job.Name,
					job.Status.State,
					job.Spec.TrainingImage,
					job.Status.CreationTime.Format(time.RFC3339),
					job.Status.FailureReason,
				})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}

func NewTrainInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show one training job",
		Example: `
  sagex train info my-platform mnist-20260825-120000
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
			job, err := cli.Remote.GetTrainingJob(ctx, args[1])
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
	return cmd
}

func NewTrainStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a training job",
		Example: `
  sagex train stop my-platform mnist-20260825-120000
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
			return cli.Remote.StopTrainingJob(ctx, args[1])
		},
	}
	return cmd
}
