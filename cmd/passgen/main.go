// Command passgen prints random passwords drawn from the same pool as the
// web generator.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"password-dashboard/internal/generator"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	defaults := generator.DefaultOptions()

	var opts generator.Options
	var count int

	flagSet := pflag.NewFlagSet("passgen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVarP(&opts.Length, "length", "l", defaults.Length, fmt.Sprintf("password length (1-%d)", generator.MaxLength))
	flagSet.BoolVar(&opts.IncludeDigits, "digits", defaults.IncludeDigits, "include digits")
	flagSet.BoolVar(&opts.IncludeSpecial, "special", defaults.IncludeSpecial, "include punctuation")
	flagSet.IntVarP(&count, "count", "n", 1, "number of passwords to print")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	for i := 0; i < count; i++ {
		password, err := generator.Generate(opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, password)
	}
	return nil
}
