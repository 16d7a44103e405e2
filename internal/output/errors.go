package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Chain splits err into one message per wrapping level, outermost first.
// Each level's text has its cause's text trimmed off so nothing repeats.
func Chain(err error) []string {
	var lines []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		lines = append(lines, msg)
		err = next
	}
	return lines
}

// FprintErrorChain writes err and every underlying cause to w.
func FprintErrorChain(w io.Writer, err error) {
	lines := Chain(err)
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%s Error: %s", StyleSymbols["fail"], lines[0])))
	for _, line := range lines[1:] {
		fmt.Fprintln(w, "  "+debugStyle.Render(fmt.Sprintf("%s caused by: %s", StyleSymbols["arrow"], line)))
	}
}

func PrintErrorChain(err error) {
	FprintErrorChain(os.Stderr, err)
}
