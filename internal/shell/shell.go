package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

// Thermostat is the part of client.Client the shell drives.
type Thermostat interface {
	Send(packets ...*protocol.Packet)
	AwaitResponse(ctx context.Context, domain protocol.Domain, attribute byte, timeout time.Duration) (protocol.Fields, error)
	Status() client.Status
}

// Shell is an interactive prompt for sending commands to a thermostat.
type Shell struct {
	thermostat Thermostat
	rl         *readline.Instance
	out        io.Writer
	quiet      bool
	log        *zap.Logger
}

// New creates a shell reading from the terminal.
func New(t Thermostat, prompt string) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(t, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(t Thermostat, out io.Writer) *Shell {
	return &Shell{thermostat: t, out: out, log: logging.Named("shell")}
}

// Stdout returns a writer that does not corrupt the prompt. Route log output
// through it while the shell runs.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// SetQuiet suppresses printing of unsolicited updates.
func (s *Shell) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// PrintUpdate prints an unsolicited update above the prompt. Use it as the
// client's update callback.
func (s *Shell) PrintUpdate(u client.Update) {
	if s.quiet {
		return
	}
	if u.IsStatus() {
		fmt.Fprintf(s.out, "<- connection %s\n", u.Fields)
		return
	}
	fmt.Fprintf(s.out, "<- %s/%d %s\n", u.Domain, u.Attribute, u.Fields)
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	s.printHelp()
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if quit := s.Execute(ctx, line); quit {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
	}
}

// Execute runs one line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	if cmd == nil {
		return false
	}

	switch cmd.Kind {
	case KindHelp:
		s.printHelp()
	case KindQuit:
		return true
	case KindStatus:
		st := s.thermostat.Status()
		fmt.Fprintf(s.out, "state=%s connected=%t reconnecting=%t stopped=%t\n",
			st.State, st.Connected, st.Reconnecting, st.Stopped)
	case KindSend:
		s.thermostat.Send(cmd.Packets...)
		for _, p := range cmd.Packets {
			fmt.Fprintf(s.out, "-> %s\n", p)
		}
	case KindWait:
		fmt.Fprintf(s.out, "waiting up to %s for %s/%d\n", cmd.Timeout, cmd.Domain, cmd.Attribute)
		fields, err := s.thermostat.AwaitResponse(ctx, cmd.Domain, cmd.Attribute, cmd.Timeout)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(s.out, "== %s/%d %s\n", cmd.Domain, cmd.Attribute, fields)
	}

	s.log.Debug("Executed shell command", zap.String("line", strings.TrimSpace(line)))
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintf(s.out, `
Aprilaire Shell Commands:
  Reading:
    read <alias>              - Queue a read request (%s)
    read <domain> <attr>      - Queue a read request by number
    wait <target> [timeout]   - Wait for the next response for an attribute

  Control:
    mode <%s>
    fan <%s>
    hold <%s>
    setpoint <cool> <heat>    - Degrees C, 0 leaves a setpoint unchanged
    dehumidify <percent>
    humidify <percent>
    write <target> k=v ...    - Raw write using schema field names
    sync                      - Request a full status burst
    bootstrap                 - Re-send the connection bootstrap sequence

  Other:
    status                    - Show connection state
    help                      - Show this help
    quit                      - Exit
`,
		strings.Join(aliasNames(), ", "),
		strings.Join(protocol.ModeLabels.Names(), "|"),
		strings.Join(protocol.FanModeLabels.Names(), "|"),
		strings.Join(protocol.HoldLabels.Names(), "|"),
	)
}

func completer() *readline.PrefixCompleter {
	targets := make([]readline.PrefixCompleterInterface, 0, len(readAliases))
	for _, name := range aliasNames() {
		targets = append(targets, readline.PcItem(name))
	}
	labels := func(l protocol.Label) []readline.PrefixCompleterInterface {
		items := make([]readline.PrefixCompleterInterface, 0)
		for _, name := range l.Names() {
			items = append(items, readline.PcItem(name))
		}
		return items
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("read", targets...),
		readline.PcItem("wait", targets...),
		readline.PcItem("write", targets...),
		readline.PcItem("mode", labels(protocol.ModeLabels)...),
		readline.PcItem("fan", labels(protocol.FanModeLabels)...),
		readline.PcItem("hold", labels(protocol.HoldLabels)...),
		readline.PcItem("setpoint"),
		readline.PcItem("dehumidify"),
		readline.PcItem("humidify"),
		readline.PcItem("sync"),
		readline.PcItem("bootstrap"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
