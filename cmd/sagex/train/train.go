package train

import (
	"github.com/spf13/cobra"
)

func NewTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Training job management",
		Long:  "Training job management",
	}
	cmd.AddCommand(NewTrainRunCmd())
	cmd.AddCommand(NewTrainListCmd())
	cmd.AddCommand(NewTrainInfoCmd())
	cmd.AddCommand(NewTrainStopCmd())
	return cmd
}
