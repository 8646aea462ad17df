package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

type fder interface{ Fd() uintptr }

// ColorEnabled reports whether text written to w keeps its escape codes.
// Only terminals do, unless NO_COLOR is set or color is forced.
func ColorEnabled(w io.Writer) bool {
	switch {
	case disableColor:
		return false
	case forceColor:
		return true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// C wraps s in color. Plain themes and disabled color return s as is.
func C(color, s string) string {
	if disableColor || current.Plain || color == "" {
		return s
	}
	return color + s + reset
}

// Dim renders s faint.
func Dim(s string) string { return C(dim, s) }

// Println writes s and a newline, dropping escape codes when w is not a
// color terminal.
func Println(w io.Writer, s string) {
	if !ColorEnabled(w) {
		s = ansi.Strip(s)
	}
	fmt.Fprintln(w, s)
}

func OK(w io.Writer, msg string)   { Println(w, C(current.Success, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { Println(w, C(current.Error, symCross+" "+msg)) }

// Hint prints a muted follow-up line under a failure.
func Hint(w io.Writer, msg string) { Println(w, C(current.Muted, "Hint: "+msg)) }
