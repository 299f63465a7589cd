package cli

import (
	"io"

	"github.com/spf13/pflag"

	"clockin/internal/errors"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags parses args and rejects more than maxArgs positional arguments
func parseFlags(fs *pflag.FlagSet, args []string, maxArgs int) error {
	if err := fs.Parse(args); err != nil {
		return errors.NewInvalidInputError("flags", args, err.Error())
	}
	if fs.NArg() > maxArgs {
		return errors.NewInvalidInputError("argument", fs.Arg(maxArgs), "unexpected argument to "+fs.Name())
	}
	return nil
}
