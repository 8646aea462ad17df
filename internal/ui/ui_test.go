package ui

import (
	"bytes"
	"strings"
	"testing"
)

func resetUI(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetColorForcing(false, false)
		SetTheme("classic")
	})
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 4, 2, "█░░░░  25%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestPanelMono(t *testing.T) {
	resetUI(t)
	SetTheme("mono")

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "[ ] a longer line"})

	want := strings.Join([]string{
		"+-------------------+",
		"| Todos             |",
		"| [ ] a longer line |",
		"+-------------------+",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPanelPadsColoredLines(t *testing.T) {
	resetUI(t)
	SetColorForcing(true, false)

	var buf bytes.Buffer
	Panel(&buf, []string{C(fgGreen, "ok"), "longer"})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], fgGreen+"ok"+reset+"     ") {
		t.Errorf("colored line padded by escape length: %q", lines[1])
	}
}

func TestColorFollowsWriter(t *testing.T) {
	resetUI(t)

	var buf bytes.Buffer
	if ColorEnabled(&buf) {
		t.Error("a buffer is not a terminal")
	}
	OK(&buf, "added")
	if got := buf.String(); got != "✔ added\n" {
		t.Errorf("escape codes not stripped: %q", got)
	}

	SetColorForcing(true, false)
	if !ColorEnabled(&buf) {
		t.Error("forced color ignored")
	}
	if got := C(fgRed, "x"); got != fgRed+"x"+reset {
		t.Errorf("forced: got %q", got)
	}

	SetColorForcing(true, true)
	if got := C(fgRed, "x"); got != "x" {
		t.Errorf("disabled: got %q", got)
	}
}

func TestPlainThemeHasNoColor(t *testing.T) {
	resetUI(t)
	SetColorForcing(true, false)
	SetTheme("mono")
	if got := C(fgRed, "x"); got != "x" {
		t.Errorf("mono: got %q", got)
	}
}

func TestOKAndFail(t *testing.T) {
	resetUI(t)
	SetColorForcing(false, true)

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "boom")
	Hint(&buf, "run `todo ls`")
	want := "✔ added\n✖ boom\nHint: run `todo ls`\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSetTheme(t *testing.T) {
	resetUI(t)
	if !SetTheme("NEON") || Current().Name != "neon" {
		t.Errorf("neon not selected: %q", Current().Name)
	}
	if SetTheme("sepia") || Current().Name != "classic" {
		t.Errorf("unknown theme: got %q, want classic", Current().Name)
	}
	if got := strings.Join(Themes(), ","); got != "classic,mono,neon" {
		t.Errorf("Themes: got %s", got)
	}
}
