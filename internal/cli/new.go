package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/djboot/djboot/internal/commands"
)

func newNewCommand() *cobra.Command {
	var (
		directory  string
		skipDocker bool
		noInput    bool
		verbose    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Provision a new Django + DRF project",
		Long: `Provision a new project: virtual environment, pinned packages, split
base/dev/prod settings, env files, and Docker artifacts. Prompts for the
project name when it is not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, _, err := buildDeps()
			if err != nil {
				return err
			}

			opts := commands.NewOpts{
				Directory:  directory,
				SkipDocker: skipDocker,
				NoInput:    noInput,
				Verbose:    verbose,
				Timeout:    timeout,
			}
			if len(args) == 1 {
				opts.Name = args[0]
			}

			return commands.New(cmd.Context(), deps, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "",
		"Parent directory for the project (default: current directory)")
	cmd.Flags().BoolVar(&skipDocker, "skip-docker", false,
		"Do not generate Dockerfile and compose files")
	cmd.Flags().BoolVar(&noInput, "no-input", false,
		"Never prompt; fail if the name is missing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Stream pip output instead of a spinner")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"Abort the run after this duration (default from config)")

	return cmd
}
