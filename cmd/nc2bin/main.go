package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	exitFailure = 1
	// exitInterrupted follows the shell convention for SIGINT (128+2).
	exitInterrupted = 130
)

func main() {
	os.Exit(execute(newRootCommand(), os.Args[1:], os.Stderr))
}

// execute runs cmd and maps its error to a process exit code, printing a
// single-line diagnostic for every failure except interruption.
func execute(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	fmt.Fprintln(stderr, diagnostic(err))
	return exitFailure
}

// diagnostic flattens wrapped and joined errors onto one line.
func diagnostic(err error) string {
	return "nc2bin: " + strings.Join(strings.Fields(err.Error()), " ")
}
