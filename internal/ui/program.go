package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/aprilaire/internal/client"
)

// RunMonitor runs m full screen on the terminal. attach is called with the
// program before it starts so the caller can route client updates into it
// with Send.
func RunMonitor(m Monitor, attach func(p *tea.Program)) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stdout))
	if attach != nil {
		attach(p)
	}
	_, err := p.Run()
	return err
}

// Printer writes the CLI's styled, run-once output.
type Printer struct {
	out   io.Writer
	width int
	now   func() time.Time
}

// NewPrinter creates a Printer writing to w, or to stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth(), now: time.Now}
}

// Width returns the width used for boxes.
func (p *Printer) Width() int {
	return p.width
}

// Print writes content as is.
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content and a newline.
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline writes an empty line.
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader renders a command header.
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintSuccess renders a success box.
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning renders a warning box.
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints a failure box. A multi-line hint, such as the one from
// client.TroubleshootingHint, is split into one tip per line.
func (p *Printer) PrintError(title string, err error, hint string) {
	var tips []string
	if hint != "" {
		tips = strings.Split(hint, "\n")
	}
	p.Println(NewFailureResult(title, err, tips).SetWidth(p.width).Render())
}

// PrintProgress renders the progress bar and steps.
func (p *Printer) PrintProgress(pr *Progress) {
	p.Println(pr.SetWidth(p.width).Render())
}

// PrintUpdate writes one timestamped line per update. It is the monitor's
// fallback when stdout is not a terminal.
func (p *Printer) PrintUpdate(u client.Update) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", p.now().Format(time.RFC3339), FormatUpdate(u))
}
