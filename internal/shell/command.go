package shell

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/aprilaire/internal/protocol"
)

// Kind is what a parsed command does.
type Kind int

const (
	KindSend   Kind = iota // queue Packets
	KindWait               // await a response for Domain/Attribute
	KindStatus             // print connectivity
	KindHelp
	KindQuit
)

// DefaultWaitTimeout bounds a "wait" without an explicit timeout.
const DefaultWaitTimeout = 10 * time.Second

// Command is one parsed shell line.
type Command struct {
	Kind      Kind
	Packets   []*protocol.Packet
	Domain    protocol.Domain
	Attribute byte
	Timeout   time.Duration
}

type readAlias struct {
	domain protocol.Domain
	attr   byte
}

var readAliases = map[string]readAlias{
	"control":    {protocol.DomainControl, protocol.AttrControl},
	"sensors":    {protocol.DomainSensors, protocol.AttrSensorsControlling},
	"installed":  {protocol.DomainSensors, protocol.AttrSensorsInstalled},
	"hold":       {protocol.DomainScheduling, protocol.AttrSchedulingHold},
	"mac":        {protocol.DomainIdentification, protocol.AttrIdentificationMAC},
	"name":       {protocol.DomainIdentification, protocol.AttrIdentificationName},
	"revision":   {protocol.DomainIdentification, protocol.AttrIdentificationRev},
	"equipment":  {protocol.DomainControl, protocol.AttrThermostatStatus},
	"dehumidify": {protocol.DomainControl, protocol.AttrDehumidification},
	"humidify":   {protocol.DomainControl, protocol.AttrHumidification},
}

// ParseCommand turns a shell line into a Command. Empty lines return nil.
func ParseCommand(line string) (*Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, nil
	}
	name := strings.ToLower(parts[0])
	args := parts[1:]

	send := func(p ...*protocol.Packet) (*Command, error) {
		return &Command{Kind: KindSend, Packets: p}, nil
	}

	switch name {
	case "help", "?":
		return &Command{Kind: KindHelp}, nil
	case "quit", "exit", "q":
		return &Command{Kind: KindQuit}, nil
	case "status":
		return &Command{Kind: KindStatus}, nil
	case "sync":
		return send(protocol.Sync())
	case "bootstrap":
		return send(protocol.Bootstrap()...)

	case "read", "r":
		d, a, _, err := target(args, 0)
		if err != nil {
			return nil, err
		}
		return send(protocol.ReadRequest(d, a))

	case "wait", "w":
		d, a, rest, err := target(args, 1)
		if err != nil {
			return nil, err
		}
		timeout := DefaultWaitTimeout
		if len(rest) == 1 {
			if timeout, err = time.ParseDuration(rest[0]); err != nil || timeout <= 0 {
				return nil, fmt.Errorf("invalid timeout %q", rest[0])
			}
		}
		return &Command{Kind: KindWait, Domain: d, Attribute: a, Timeout: timeout}, nil

	case "mode":
		v, err := labelArg(args, protocol.ModeLabels)
		if err != nil {
			return nil, err
		}
		return send(protocol.UpdateMode(v))

	case "fan":
		v, err := labelArg(args, protocol.FanModeLabels)
		if err != nil {
			return nil, err
		}
		return send(protocol.UpdateFanMode(v))

	case "hold":
		v, err := labelArg(args, protocol.HoldLabels)
		if err != nil {
			return nil, err
		}
		return send(protocol.SetHold(v))

	case "setpoint":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: setpoint <cool> <heat>")
		}
		cool, err1 := strconv.ParseFloat(args[0], 64)
		heat, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("setpoints must be numbers")
		}
		p := protocol.UpdateSetpoint(cool, heat)
		if _, err := p.Serialize(); err != nil {
			return nil, err
		}
		return send(p)

	case "dehumidify", "humidify":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s <percent>", name)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > 99 {
			return nil, fmt.Errorf("invalid humidity setpoint %q", args[0])
		}
		if name == "dehumidify" {
			return send(protocol.UpdateDehumidificationSetpoint(n))
		}
		return send(protocol.UpdateHumidificationSetpoint(n))

	case "write":
		d, a, rest, err := target(args, -1)
		if err != nil {
			return nil, err
		}
		fields := protocol.Fields{}
		for _, kv := range rest {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("expected field=value, got %q", kv)
			}
			fields[k] = parseValue(v)
		}
		p := protocol.Write(d, a, fields)
		if _, err := p.Serialize(); err != nil {
			return nil, err
		}
		return send(p)
	}

	return nil, fmt.Errorf("unknown command: %s (type 'help' for commands)", name)
}

// target resolves "<alias>" or "<domain> <attribute>" at the start of args
// and returns what follows. extra caps the trailing argument count; -1 means
// unlimited.
func target(args []string, extra int) (protocol.Domain, byte, []string, error) {
	if len(args) == 0 {
		return 0, 0, nil, fmt.Errorf("missing target: use an alias (%s) or <domain> <attribute>", strings.Join(aliasNames(), ", "))
	}

	var (
		d    protocol.Domain
		a    byte
		rest []string
	)
	// Some aliases are also domain names; a numeric second argument selects
	// the <domain> <attribute> form.
	if alias, ok := readAliases[strings.ToLower(args[0])]; ok && !numericTarget(args) {
		d, a, rest = alias.domain, alias.attr, args[1:]
	} else {
		if len(args) < 2 {
			return 0, 0, nil, fmt.Errorf("unknown alias %q", args[0])
		}
		var err error
		if d, err = protocol.ParseDomain(strings.ToLower(args[0])); err != nil {
			return 0, 0, nil, err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 || n > 255 {
			return 0, 0, nil, fmt.Errorf("invalid attribute %q", args[1])
		}
		a, rest = byte(n), args[2:]
	}

	if extra >= 0 && len(rest) > extra {
		return 0, 0, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest[extra:], " "))
	}
	return d, a, rest, nil
}

func numericTarget(args []string) bool {
	if len(args) < 2 {
		return false
	}
	if _, err := protocol.ParseDomain(strings.ToLower(args[0])); err != nil {
		return false
	}
	_, err := strconv.Atoi(args[1])
	return err == nil
}

func labelArg(args []string, l protocol.Label) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one of: %s", strings.Join(l.Names(), ", "))
	}
	return l.Parse(args[0])
}

func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func aliasNames() []string {
	return slices.Sorted(maps.Keys(readAliases))
}
