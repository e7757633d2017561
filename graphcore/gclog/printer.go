package gclog

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes one colorized line per event to w, the same
// color-when-attached-to-a-terminal behavior as the teacher's
// datalog/annotations.OutputFormatter.
type Printer struct {
	w        io.Writer
	useColor bool
	label    *color.Color
}

// NewPrinter builds a Printer writing to w. w == nil defaults to
// os.Stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		w:        w,
		useColor: !color.NoColor,
		label:    color.New(color.FgCyan),
	}
}

// Collect implements Collector.
func (p *Printer) Collect(e Event) {
	name := e.Name
	if p.useColor {
		name = p.label.Sprint(e.Name)
	}
	if e.Latency > 0 {
		fmt.Fprintf(p.w, "[%s] %s %v\n", name, e.Latency, e.Data)
		return
	}
	fmt.Fprintf(p.w, "[%s] %v\n", name, e.Data)
}
