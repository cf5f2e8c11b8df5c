package repo

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRepoAddCmd() *cobra.Command {
	token := ""
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a platform server",
		Long:  "Add a platform server",
		Example: `
	# Add a platform server
	sagex repo add my-platform https://sagex.example.com
		`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) != 2 {
				return fmt.Errorf("repo add requires two arguments")
			}
			details := RepoDetails{
				Name:  args[0],
				URL:   args[1],
				Token: token,
			}
			if err := details.Client().Ping(ctx); err != nil {
				return fmt.Errorf("verify %s: %w", details.URL, err)
			}
			return DefaultRepoManager.Set(details)
		},
	}
	cmd.Flags().StringVar(&token, "token", token, "bearer token")
	return cmd
}
