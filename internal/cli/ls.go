package cli

import (
	"github.com/spf13/cobra"

	"github.com/djboot/djboot/internal/commands"
)

func newLSCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List provisioned projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, _, err := buildDeps()
			if err != nil {
				return err
			}
			return commands.LS(cmd.Context(), deps, commands.LSOpts{JSON: jsonOut}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output machine-readable JSON")

	return cmd
}
