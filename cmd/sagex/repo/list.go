package repo

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func NewRepoListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured platform servers",
		Example: `
	# List configured platform servers

		sagex repo list

		`,
		RunE: func(cmd *cobra.Command, args []string) error {
			details := DefaultRepoManager.List()
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "URL"})
			for _, item := range details {
				t.AppendRow(table.Row{item.Name, item.URL})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}

func CompleteRepoNames(toComplete string) ([]string, cobra.ShellCompDirective) {
	names := []string{}
	for _, item := range DefaultRepoManager.List() {
		names = append(names, item.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
