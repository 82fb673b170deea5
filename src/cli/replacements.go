package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var replacements = map[string]string{
	"BOLD":        "\x1b[1m",
	"BOLD_RED":    "\x1b[31;1m",
	"BOLD_YELLOW": "\x1b[33;1m",
	"BOLD_WHITE":  "\x1b[37;1m",
	"GREY":        "\x1b[30m",
	"RED":         "\x1b[31m",
	"YELLOW":      "\x1b[33m",
	"RESET":       "\x1b[0m",
}

// Printf is a convenience wrapper to Fprintf that always writes to stderr.
func Printf(msg string, args ...interface{}) {
	Fprintf(os.Stderr, msg, args...)
}

// Fprintf implements essentially fmt.Fprintf with replacements of
// some ANSI sequences, e.g. ${BOLD_RED} -> \x1bwhatever.
// The sequences are dropped entirely when coloured output is off.
func Fprintf(w io.Writer, msg string, args ...interface{}) {
	for k, v := range replacements {
		if !ShowColouredOutput {
			v = ""
		}
		msg = strings.ReplaceAll(msg, "${"+k+"}", v)
	}
	fmt.Fprintf(w, msg, args...)
}
