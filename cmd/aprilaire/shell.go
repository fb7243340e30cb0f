package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/shell"
)

var shellQuiet bool

func init() {
	shellCmd.Flags().BoolVar(&shellQuiet, "quiet", false, "Do not print unsolicited updates")
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command shell",
	Long: `Open an interactive prompt connected to a thermostat.

Commands are queued on the connection as you type them and every message the
thermostat sends is printed above the prompt. Type 'help' for commands.`,
	Example: `  aprilaire shell --host 192.168.1.50

  aprilaire> read sensors
  aprilaire> mode cool
  aprilaire> wait control 10s`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sh atomic.Pointer[shell.Shell]
	s, err := openSession(ctx, func(u client.Update) {
		if p := sh.Load(); p != nil {
			p.PrintUpdate(u)
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	prompt, err := shell.New(s, "aprilaire> ")
	if err != nil {
		return err
	}
	prompt.SetQuiet(shellQuiet)
	sh.Store(prompt)

	return prompt.Run(ctx)
}
