package config

import (
	"github.com/spf13/pflag"
)

// PathFromArgs parses the command line of binary name and returns the
// --config file path, or "" when none was given.
func PathFromArgs(name string, args []string) (string, error) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := flags.StringP("config", "c", "", "optional config file; environment variables override it")
	if err := flags.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}
