package repo

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRepoRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a platform server",
		Long:  "Remove a platform server",
		Example: `
		# Remove a platform server
		sagex repo remove my-platform`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return CompleteRepoNames(toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("repo remove requires at least one argument")
			}
			for _, name := range args {
				if err := DefaultRepoManager.Remove(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
