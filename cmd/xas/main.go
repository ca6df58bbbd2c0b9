package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ohare93/xagentsync/internal/cli"
	"github.com/ohare93/xagentsync/internal/handoff"
)

// Exit codes distinguish bad input from state conflicts for calling agents.
const (
	exitError    = 1
	exitInvalid  = 2
	exitConflict = 3
	exitNotFound = 4
)

func main() {
	if err := cli.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		schema   *handoff.SchemaError
		invalid  *handoff.ValidationError
		mismatch *handoff.ModeMismatchError
		conflict *handoff.ConflictError
		notFound *handoff.NotFoundError
	)
	switch {
	case errors.As(err, &schema), errors.As(err, &invalid):
		return exitInvalid
	case errors.As(err, &mismatch), errors.As(err, &conflict):
		return exitConflict
	case errors.As(err, &notFound):
		return exitNotFound
	default:
		return exitError
	}
}
