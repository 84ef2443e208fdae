package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
)

var (
	matchLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	mismatchLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	detailLabel   = color.New(color.FgHiBlack).SprintFunc()
)

// WriteCheck prints the gate verdict for one module. The first mismatch,
// when known, is shown as a hint.
func WriteCheck(w io.Writer, module string, matched bool, first *muzzle.Mismatch) {
	if matched {
		fmt.Fprintf(w, "%s %s\n", matchLabel("MATCH   "), module)
		return
	}

	fmt.Fprintf(w, "%s %s\n", mismatchLabel("MISMATCH"), module)
	if first != nil {
		fmt.Fprintf(w, "         %s\n", detailLabel(first.String()))
	}
}
