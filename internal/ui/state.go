package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
)

// State accumulates the latest fields reported for every attribute so views
// can render a consistent picture of the thermostat.
type State struct {
	Connected    bool
	Reconnecting bool
	Stopped      bool
	Available    bool
	LastUpdate   time.Time

	attrs map[protocol.AttributeKey]protocol.Fields
}

// NewState returns an empty, disconnected state.
func NewState() *State {
	return &State{Stopped: true, attrs: make(map[protocol.AttributeKey]protocol.Fields)}
}

// Apply merges u into the state.
func (s *State) Apply(u client.Update, at time.Time) {
	s.LastUpdate = at

	if u.IsStatus() {
		if v, ok := u.Fields.Bool(protocol.FieldAvailable); ok {
			s.Available = v
		}
		if v, ok := u.Fields.Bool(protocol.FieldConnected); ok {
			s.Connected = v
			if v {
				s.Available = true
			}
		}
		if v, ok := u.Fields.Bool(protocol.FieldReconnecting); ok {
			s.Reconnecting = v
		}
		if v, ok := u.Fields.Bool(protocol.FieldStopped); ok {
			s.Stopped = v
		}
		return
	}

	key := protocol.AttributeKey{Domain: u.Domain, Attribute: u.Attribute}
	merged := s.attrs[key]
	if merged == nil {
		merged = protocol.Fields{}
		s.attrs[key] = merged
	}
	for k, v := range u.Fields {
		merged[k] = v
	}
}

// Fields returns the merged fields for an attribute, or nil.
func (s *State) Fields(domain protocol.Domain, attribute byte) protocol.Fields {
	return s.attrs[protocol.AttributeKey{Domain: domain, Attribute: attribute}]
}

// ConnectionLabel summarizes connectivity in a word or two.
func (s *State) ConnectionLabel() string {
	switch {
	case s.Connected:
		return "connected"
	case s.Reconnecting:
		return "reconnecting"
	case s.Stopped:
		return "stopped"
	default:
		return "connecting"
	}
}

// Mode returns the system mode name, "-" before control is known.
func (s *State) Mode() string {
	return s.label(protocol.DomainControl, protocol.AttrControl, protocol.FieldMode, protocol.ModeLabels)
}

// FanMode returns the fan mode name.
func (s *State) FanMode() string {
	return s.label(protocol.DomainControl, protocol.AttrControl, protocol.FieldFanMode, protocol.FanModeLabels)
}

// Hold returns the schedule hold name.
func (s *State) Hold() string {
	return s.label(protocol.DomainScheduling, protocol.AttrSchedulingHold, protocol.FieldHold, protocol.HoldLabels)
}

func (s *State) label(d protocol.Domain, attr byte, field string, l protocol.Label) string {
	if v, ok := s.Fields(d, attr).Int(field); ok {
		return l.Name(v)
	}
	return "-"
}

// Temperature formats a temperature field, "-" when absent.
func (s *State) Temperature(d protocol.Domain, attr byte, field string) string {
	if v, ok := s.Fields(d, attr).Float(field); ok {
		return FormatTemperature(v)
	}
	return "-"
}

// Humidity formats a humidity field, "-" when absent or not reported.
func (s *State) Humidity(d protocol.Domain, attr byte, field string) string {
	if v, ok := s.Fields(d, attr).Int(field); ok {
		return fmt.Sprintf("%d%%", v)
	}
	return "-"
}

// Text returns a text field, "-" when absent.
func (s *State) Text(d protocol.Domain, attr byte, field string) string {
	if v, ok := s.Fields(d, attr).Text(field); ok && v != "" {
		return v
	}
	return "-"
}

// Model returns the model name from the revision attribute.
func (s *State) Model() string {
	if n, ok := s.Fields(protocol.DomainIdentification, protocol.AttrIdentificationRev).Int(protocol.FieldModelNumber); ok {
		return protocol.ModelName(n)
	}
	return "-"
}

// EquipmentRunning lists the equipment status fields that are non-zero.
func (s *State) EquipmentRunning() string {
	var running []string
	for _, src := range []struct {
		attr   byte
		fields []string
	}{
		{protocol.AttrStatusHVAC, []string{protocol.FieldHeatingEquipmentStatus, protocol.FieldCoolingEquipmentStatus, protocol.FieldFanStatus}},
		{protocol.AttrStatusIAQ, []string{protocol.FieldDehumidificationStatus, protocol.FieldHumidificationStatus, protocol.FieldVentilationStatus, protocol.FieldAirCleaningStatus}},
	} {
		f := s.Fields(protocol.DomainStatus, src.attr)
		for _, name := range src.fields {
			if v, ok := f.Int(name); ok && v != 0 {
				running = append(running, strings.TrimSuffix(strings.TrimSuffix(name, "_status"), "_equipment"))
			}
		}
	}
	if len(running) == 0 {
		return "idle"
	}
	return strings.Join(running, ", ")
}

// FormatTemperature renders degrees Celsius with one decimal.
func FormatTemperature(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

// FormatUpdate renders an update as a single plain line.
func FormatUpdate(u client.Update) string {
	if u.IsStatus() {
		return "connection " + u.Fields.String()
	}
	return fmt.Sprintf("%s/%d %s", u.Domain, u.Attribute, u.Fields)
}
