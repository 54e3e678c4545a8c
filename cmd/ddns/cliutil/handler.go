package cliutil

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const errorExitCode = 1

func Action(actionFunc cli.ActionFunc) cli.ActionFunc {
	return WithErrorHandler(actionFunc)
}

// WithErrorHandler turns every error into an exit code so urfave/cli prints it and exits.
func WithErrorHandler(actionFunc cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		err := actionFunc(ctx)
		if err == nil {
			return nil
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			return err
		}
		return cli.Exit(err.Error(), errorExitCode)
	}
}
