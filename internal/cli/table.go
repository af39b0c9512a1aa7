package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/machine"
	"github.com/thruflo/turing/internal/render"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the states and transition function",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render.TransitionTable(cmd.OutOrStdout(), machine.AdditionTable())
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
