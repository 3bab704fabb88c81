package main

import (
	"os"

	"github.com/djboot/djboot/internal/cli"
	"github.com/djboot/djboot/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
