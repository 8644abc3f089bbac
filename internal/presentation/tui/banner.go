package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the turingviz banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _             _              _     ", "#818cf8"},
		{"| |_ _  _ _ _(_)_ _  __ _ __ _(_)___", "#a78bfa"},
		{"|  _| || | '_| | ' \\/ _` |\\ V / |_ /", "#c084fc"},
		{" \\__|\\_,_|_| |_|_||_\\__, | \\_/|_/__|", "#e879f9"},
		{"                    |___/           ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors an outcome word for terminal output: green for accept,
// red for reject, yellow otherwise.
func Status(w io.Writer, halted, accepting bool) string {
	out := termenv.NewOutput(w)
	switch {
	case halted && accepting:
		return out.String("ACCEPT").Foreground(out.Color("#22c55e")).Bold().String()
	case halted:
		return out.String("REJECT").Foreground(out.Color("#ef4444")).Bold().String()
	default:
		return out.String("RUNNING").Foreground(out.Color("#eab308")).String()
	}
}
