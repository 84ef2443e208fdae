package cmd

import (
	"errors"

	"github.com/fatih/color"
)

// errMismatch makes the process exit non-zero when a module does not match
var errMismatch = errors.New("one or more modules do not match")

func formatError(err error) string {
	red := color.New(color.FgRed, color.Bold)
	return red.Sprint("Error: ") + err.Error()
}
