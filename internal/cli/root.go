// Package cli wires the cobra command tree for djboot.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/exec"
	"github.com/djboot/djboot/internal/fs"
	"github.com/djboot/djboot/internal/paths"
	"github.com/djboot/djboot/internal/version"

	"github.com/djboot/djboot/internal/commands"
)

var cfgFile string

// osEnv implements paths.Env using os.Getenv.
type osEnv struct{}

func (osEnv) Get(key string) string {
	return os.Getenv(key)
}

// RootCmd is the djboot root command.
var RootCmd = &cobra.Command{
	Use:               "djboot",
	Short:             "Bootstrap production-shaped Django + DRF projects",
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	Long: `djboot provisions a Django + Django REST Framework project with the
layout a production deployment actually needs: a virtual environment, split
base/dev/prod settings, env files kept out of version control, and Docker
artifacts for both development and production.

Configuration can be provided via a .djboot config file or environment
variables (prefix DJBOOT_).`,
	Example: `  # Create a project named blog in the current directory
  djboot new blog

  # Prompt for the name interactively
  djboot new

  # No container artifacts
  djboot new api --skip-docker

  # Check prerequisites and resolved configuration
  djboot doctor`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		switch level {
		case "debug":
			initLogger(slog.LevelDebug)
		case "warn":
			initLogger(slog.LevelWarn)
		case "error":
			initLogger(slog.LevelError)
		default:
			initLogger(slog.LevelInfo)
		}
		return nil
	},
}

// initLogger sets the global logger with a tint handler. Colors make the
// output easier to scan; logs go to stderr so stdout stays parseable.
func initLogger(level slog.Leveler) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

// buildDeps resolves directories, loads config, and assembles the command
// dependencies.
func buildDeps() (commands.Deps, paths.Dirs, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return commands.Deps{}, paths.Dirs{}, errors.Wrap(errors.EInternal, "failed to get home directory", err)
	}
	dirs := paths.ResolveDirs(osEnv{}, homeDir)

	cfg, err := config.Load(cfgFile, dirs.ConfigDir)
	if err != nil {
		return commands.Deps{}, paths.Dirs{}, err
	}

	return commands.Deps{
		CR:      exec.NewRealRunner(),
		FS:      fs.NewRealFS(),
		Cfg:     cfg,
		DataDir: dirs.DataDir,
		Stdin:   os.Stdin,
		Log:     slog.Default(),
	}, dirs, nil
}

// Execute runs the root command and returns the resulting error.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("djboot\n")
			fmt.Printf("Version:  %s\n", version.Version)
			fmt.Printf("Commit:   %s\n", version.Commit)
			fmt.Printf("Built:    %s\n", version.Date)
		},
	}

	RootCmd.AddCommand(
		versionCmd,
		newNewCommand(),
		newDoctorCommand(),
		newLSCommand(),
	)

	RootCmd.PersistentFlags().StringP("log-level", "l", "info",
		"Set the log level. Options: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: .djboot.yaml in the config directory or cwd)")

	// Accept the camelCase spelling some shells have in their history.
	RootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "logLevel" {
			name = "log-level"
		}
		return pflag.NormalizedName(name)
	})
}
