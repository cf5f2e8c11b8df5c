package artifact

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/client/units"
	"github.com/louisbrown1/amazon-sagemaker-examples/pkg/types"
	"github.com/louisbrown1/amazon-sagemaker-examples/cmd/sagex/repo"
)

func NewArtifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Artifact store access",
		Long:  "Artifact store access: source archives and trained model artifacts",
	}
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewPushCmd())
	cmd.AddCommand(NewPullCmd())
	return cmd
}

func NewListCmd() *cobra.Command {
	search := ""
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repositories, versions or files",
		Example: `
  sagex artifact list my-platform --search "jobs/"
  sagex artifact list my-platform/jobs/mnist-20260825-120000
  sagex artifact list my-platform/jobs/mnist-20260825-120000@latest
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := repo.BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			items, err := List(ctx, args[0], search)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row(items.Header))
			for _, item := range items.Items {
				t.AppendRow(table.Row(item))
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", search, "search")
	return cmd
}

type ShowList struct {
	Header []any
	Items  [][]any
}

func List(ctx context.Context, raw string, search string) (*ShowList, error) {
	reference, cli, err := ResolveReference(raw)
	if err != nil {
		return nil, err
	}
	repository, version := reference.Repository, reference.Version

	switch {
	case repository == "" && version == "":
		index, err := cli.Remote.GetGlobalIndex(ctx, search)
		if err != nil {
			return nil, err
		}
		show := &ShowList{
			Header: []any{"Name", "URL"},
		}
		for _, item := range index.Manifests {
			ref := client.Reference{Registry: reference.Registry, Repository: item.Name}
			show.Items = append(show.Items, []any{item.Name, ref.String()})
		}
		return show, nil
	case repository != "" && version != "":
		manifest, err := cli.Remote.GetManifest(ctx, repository, version)
		if err != nil {
			return nil, err
		}
		show := &ShowList{
			Header: []any{"File", "Type", "Size", "Digest", "Modified"},
		}
		getType := func(mt string) string {
			switch mt {
			case client.MediaTypeModelDirectoryTarGz:
				return "directory"
			case client.MediaTypeModelFile:
				return "file"
			case client.MediaTypeModelConfigYaml:
				return "config"
			case client.MediaTypeSourceArchiveTarGz:
				return "source"
			default:
				return mt
			}
		}
		items := append([]types.Descriptor{manifest.Config}, manifest.Blobs...)
		for _, item := range items {
			digest := ""
			if item.Digest != "" {
				digest = item.Digest.Encoded()[:16]
			}
			show.Items = append(show.Items, []any{
				item.Name,
				getType(item.MediaType),
				units.HumanSize(float64(item.Size)),
				digest,
				item.Modified.Format(time.RFC3339),
			})
		}
		return show, nil
	case repository != "" && version == "":
		index, err := cli.Remote.GetIndex(ctx, repository, search)
		if err != nil {
			return nil, err
		}
		show := &ShowList{
			Header: []any{"Version", "URL", "Size"},
		}
		for _, item := range index.Manifests {
			ref := client.Reference{Registry: reference.Registry, Repository: repository, Version: item.Name}
			show.Items = append(show.Items, []any{item.Name, ref.String(), units.HumanSize(float64(item.Size))})
		}
		return show, nil
	default:
		return nil, errors.New("invalid reference")
	}
}
