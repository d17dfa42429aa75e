package novaerr

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Render writes a human-readable rendering of e to w: the kind and
// message, the offending source line (if known) with a caret under the
// column, and the folded stack trace. Colour is used only when w is
// backed by a TTY (spec §6.3/§7's "dim/coloured ... when the output
// stream is a TTY").
func Render(w io.Writer, e *RuntimeError) {
	useColor := streamIsTTY(w)

	headerColor := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	headerColor.EnableColor()
	dim.EnableColor()
	if !useColor {
		headerColor.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprintf(w, "%s: %s\n", headerColor.Sprint(e.Kind.String()), e.Message)

	if e.Location != nil {
		fmt.Fprintf(w, "  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column)
		if e.SourceLine != "" {
			fmt.Fprintf(w, "    %s\n", e.SourceLine)
			caret := strings.Repeat(" ", 4+max(0, e.Location.Column-1)) + strings.Repeat("^", max(1, e.Location.Length))
			fmt.Fprintln(w, dim.Sprint(caret))
		}
	}

	for _, f := range e.Stack {
		if f.ParamSummary != "" {
			fmt.Fprintln(w, dim.Sprintf("  at %s(%s)", f.DisplayName, f.ParamSummary))
		} else {
			fmt.Fprintln(w, dim.Sprintf("  at %s", f.DisplayName))
		}
	}
}

func streamIsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
