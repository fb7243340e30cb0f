// Package ui renders the aprilaire CLI's terminal output.
//
// Two styles of output are provided. Run-once commands such as probe and set
// print a Header, an optional Progress step list and a Result box through a
// Printer. The monitor command runs the Monitor Bubble Tea model full screen
// and feeds it client updates as UpdateMsg values:
//
//	m := ui.NewMonitor(addr, ui.MonitorActions{Sync: c.Sync})
//	err := ui.RunMonitor(m, func(p *tea.Program) { program = p })
//
// When stdout is not a terminal (see IsTerminal) the CLI prints updates as
// plain lines with Printer.PrintUpdate instead.
//
// Logging is silent unless APRILAIRE_LOG_LEVEL or --log-level is set, so
// zap output does not interleave with the rendered boxes.
package ui
