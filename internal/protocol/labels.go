package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Control/1 mode values.
const (
	ModeOff           = 1
	ModeHeat          = 2
	ModeCool          = 3
	ModeAuto          = 4
	ModeEmergencyHeat = 5
)

// Control/1 fan mode values.
const (
	FanOn        = 1
	FanAuto      = 2
	FanCirculate = 3
)

// Scheduling/4 hold values.
const (
	HoldNone      = 0
	HoldTemporary = 1
	HoldPermanent = 2
	HoldAway      = 3
	HoldVacation  = 4
)

// Label maps the small integer enumerations used by Control/1 and
// Scheduling/4 to short names and back.
type Label struct {
	kind  string
	names map[int]string
}

var (
	ModeLabels = Label{"mode", map[int]string{
		ModeOff:           "off",
		ModeHeat:          "heat",
		ModeCool:          "cool",
		ModeAuto:          "auto",
		ModeEmergencyHeat: "emergency_heat",
	}}
	FanModeLabels = Label{"fan mode", map[int]string{
		FanOn:        "on",
		FanAuto:      "auto",
		FanCirculate: "circulate",
	}}
	HoldLabels = Label{"hold", map[int]string{
		HoldNone:      "none",
		HoldTemporary: "temporary",
		HoldPermanent: "permanent",
		HoldAway:      "away",
		HoldVacation:  "vacation",
	}}
)

// Name returns the label for v, or the number itself when unknown.
func (l Label) Name(v int) string {
	if name, ok := l.names[v]; ok {
		return name
	}
	return strconv.Itoa(v)
}

// Parse accepts a name (case-insensitive, "-" or "_" separated) or a known
// number.
func (l Label) Parse(s string) (int, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for v, name := range l.names {
		if name == norm {
			return v, nil
		}
	}
	if n, err := strconv.Atoi(norm); err == nil {
		if _, ok := l.names[n]; ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", l.kind, s, strings.Join(l.Names(), ", "))
}

// Names lists the labels in numeric order.
func (l Label) Names() []string {
	out := make([]string, 0, len(l.names))
	for v := range 256 {
		if name, ok := l.names[v]; ok {
			out = append(out, name)
		}
	}
	return out
}
