package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
	"github.com/muurk/aprilaire/internal/ui"
)

func init() {
	setCmd.AddCommand(setModeCmd, setFanCmd, setSetpointCmd, setHoldCmd, setDehumidifyCmd, setHumidifyCmd)
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a thermostat setting",
	Long: `Change a thermostat setting and print what the thermostat reports back.

The command connects, waits for the thermostat to identify itself, sends the
write and waits for the matching change-of-state report.`,
}

var setModeCmd = &cobra.Command{
	Use:       "mode <off|heat|cool|auto|emergency_heat>",
	Short:     "Set the system mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: protocol.ModeLabels.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := protocol.ModeLabels.Parse(args[0])
		if err != nil {
			return err
		}
		return applySetting("Mode", protocol.UpdateMode(v))
	},
}

var setFanCmd = &cobra.Command{
	Use:       "fan <on|auto|circulate>",
	Short:     "Set the fan mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: protocol.FanModeLabels.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := protocol.FanModeLabels.Parse(args[0])
		if err != nil {
			return err
		}
		return applySetting("Fan mode", protocol.UpdateFanMode(v))
	},
}

var setSetpointCmd = &cobra.Command{
	Use:   "setpoint <cool> <heat>",
	Short: "Set the cooling and heating setpoints in °C",
	Long: `Set the cooling and heating setpoints in degrees Celsius.

A setpoint of 0 leaves that setpoint unchanged. Values are rounded to the
nearest half degree.`,
	Example: `  # Cool to 24.5, heat to 20
  aprilaire set setpoint 24.5 20

  # Change only the heating setpoint
  aprilaire set setpoint 0 21`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cool, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid cool setpoint: %w", err)
		}
		heat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid heat setpoint: %w", err)
		}
		return applySetting("Setpoints", protocol.UpdateSetpoint(cool, heat))
	},
}

var setHoldCmd = &cobra.Command{
	Use:       "hold <none|temporary|permanent|away|vacation>",
	Short:     "Set the schedule hold",
	Args:      cobra.ExactArgs(1),
	ValidArgs: protocol.HoldLabels.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := protocol.HoldLabels.Parse(args[0])
		if err != nil {
			return err
		}
		return applySetting("Hold", protocol.SetHold(v))
	},
}

var setDehumidifyCmd = &cobra.Command{
	Use:   "dehumidify <percent>",
	Short: "Set the dehumidification setpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := humidityArg(args[0])
		if err != nil {
			return err
		}
		return applySetting("Dehumidification", protocol.UpdateDehumidificationSetpoint(n))
	},
}

var setHumidifyCmd = &cobra.Command{
	Use:   "humidify <percent>",
	Short: "Set the humidification setpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := humidityArg(args[0])
		if err != nil {
			return err
		}
		return applySetting("Humidification", protocol.UpdateHumidificationSetpoint(n))
	},
}

func humidityArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 99 {
		return 0, fmt.Errorf("humidity setpoint must be 1-99, got %q", s)
	}
	return n, nil
}

// applySetting validates p, connects, sends it and waits until the
// thermostat reports the new values for the same attribute.
func applySetting(what string, p *protocol.Packet) error {
	if _, err := p.Serialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reports := make(chan protocol.Fields, 16)
	printer := ui.NewPrinter(nil)
	s, err := openSession(ctx, func(u client.Update) {
		if u.Domain == p.Domain && u.Attribute == p.Attribute {
			select {
			case reports <- u.Fields:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	mac, err := s.waitReady(ctx)
	if err != nil {
		printer.PrintError(what+" not changed", err, client.TroubleshootingHint(err))
		return err
	}
	s.remember(mac, nil, nil)

	s.Send(p)
	fields, err := awaitApplied(ctx, reports, p, responseTimeout())
	if err != nil {
		printer.PrintError(what+" not confirmed", err, "The write was sent but the thermostat did not report the change.")
		return err
	}

	details := make(map[string]string, len(fields))
	for k, v := range fields {
		details[k] = fmt.Sprint(v)
	}
	printer.PrintSuccess(what+" updated on "+s.target.Address(), details)
	return nil
}

// awaitApplied returns the first report that carries every value written by
// p. Reports for the attribute that predate the write, such as answers to
// the bootstrap reads, are skipped.
func awaitApplied(ctx context.Context, reports <-chan protocol.Fields, p *protocol.Packet, d time.Duration) (protocol.Fields, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case f := <-reports:
			if applied(p, f) {
				return f, nil
			}
		case <-timer.C:
			return nil, client.ErrNoResponse
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// applied reports whether got reflects the values written by p. Zero values
// in a Control/1 write mean "unchanged" and are not compared. Temperatures
// are compared to the half degree the wire format can carry.
func applied(p *protocol.Packet, got protocol.Fields) bool {
	control := p.Domain == protocol.DomainControl && p.Attribute == protocol.AttrControl
	for name := range p.Fields {
		want, ok := p.Fields.Float(name)
		if !ok {
			continue
		}
		if control && want == 0 {
			continue
		}
		have, ok := got.Float(name)
		if !ok || math.Abs(have-want) > 0.25 {
			return false
		}
	}
	return true
}
