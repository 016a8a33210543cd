package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"            _  __ _",
	"   __ _  __| |/ _| | _____      __",
	"  / _` |/ _` | |_| |/ _ \\ \\ /\\ / /",
	" | (_| | (_| |  _| | (_) \\ V  V /",
	"  \\__,_|\\__,_|_| |_|\\___/ \\_/\\_/",
}

var bannerColors = []string{"#f59e0b", "#f97316", "#ef4444", "#ec4899", "#d946ef"}

// PrintBanner writes the adflow banner and a one-line subtitle to w,
// colored when the terminal supports it.
func PrintBanner(w io.Writer, subtitle string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i%len(bannerColors)])))
	}
	if subtitle != "" {
		fmt.Fprintln(w, out.String("  "+subtitle).Faint())
	}
	fmt.Fprintln(w)
}
