package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
	"github.com/muurk/aprilaire/internal/ui"
)

var plainOutput bool

func init() {
	monitorCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print one line per update instead of the full-screen view")
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch a thermostat live",
	Long: `Connect to a thermostat and display its state as it changes.

On a terminal this opens a full-screen view (press s to request a status sync,
r to re-read control and sensors, q to quit). When output is redirected, or
with --plain, every update is printed as a timestamped line.

The client reconnects automatically if the connection drops.`,
	Example: `  aprilaire monitor --host 192.168.1.50

  # Log every update to a file while capturing raw frames
  aprilaire monitor --plain --capture session.cbor > updates.log`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if plainOutput || !ui.IsTerminal(os.Stdout) {
		return runPlainMonitor()
	}

	// Updates that arrive before the program starts are dropped; the
	// bootstrap reads repopulate everything shortly after connecting.
	var program atomic.Pointer[tea.Program]
	s, err := openSession(context.Background(), func(u client.Update) {
		if p := program.Load(); p != nil {
			p.Send(ui.UpdateMsg(u))
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	m := ui.NewMonitor(s.target.Address(), ui.MonitorActions{
		Sync: s.Sync,
		Refresh: func() {
			s.Send(protocol.ReadControl(), protocol.ReadSensors(), protocol.ReadScheduling())
		},
	})
	return ui.RunMonitor(m, program.Store)
}

func runPlainMonitor() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := ui.NewPrinter(nil)
	s, err := openSession(ctx, printer.PrintUpdate)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(os.Stderr, "Monitoring %s (Ctrl+C to stop)\n", s.target.Address())
	<-ctx.Done()
	return nil
}
