package cli

import (
	"github.com/spf13/cobra"

	"github.com/djboot/djboot/internal/commands"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites and show resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, dirs, err := buildDeps()
			if err != nil {
				return err
			}
			return commands.Doctor(cmd.Context(), deps, dirs, cmd.OutOrStdout())
		},
	}
}
