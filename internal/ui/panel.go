package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ProgressBar renders done/total as a bar of width cells and a percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// Panel draws lines inside a box using the current theme's borders. Widths
// are measured in terminal cells with escape codes ignored.
func Panel(w io.Writer, lines []string) {
	t := Current()
	inner := 0
	for _, ln := range lines {
		inner = max(inner, ansi.StringWidth(ln))
	}

	rule := strings.Repeat(t.H, inner+2)
	Println(w, C(t.Muted, t.CornerTL+rule+t.CornerTR))
	side := C(t.Muted, t.V)
	for _, ln := range lines {
		pad := strings.Repeat(" ", inner-ansi.StringWidth(ln))
		Println(w, side+" "+ln+pad+" "+side)
	}
	Println(w, C(t.Muted, t.CornerBL+rule+t.CornerBR))
}
