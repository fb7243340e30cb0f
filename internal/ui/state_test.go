package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
)

func status(connected, reconnecting, stopped bool) client.Update {
	return client.Update{Fields: protocol.Fields{
		protocol.FieldConnected:    connected,
		protocol.FieldReconnecting: reconnecting,
		protocol.FieldStopped:      stopped,
	}}
}

func TestStateConnection(t *testing.T) {
	tests := []struct {
		name   string
		update client.Update
		want   string
	}{
		{"connected", status(true, false, false), "connected"},
		{"reconnecting", status(false, true, false), "reconnecting"},
		{"stopped", status(false, false, true), "stopped"},
		{"connecting", status(false, false, false), "connecting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.Apply(tt.update, time.Now())
			if got := s.ConnectionLabel(); got != tt.want {
				t.Errorf("ConnectionLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateAvailable(t *testing.T) {
	s := NewState()
	s.Apply(status(true, false, false), time.Now())
	if !s.Available {
		t.Fatal("Available = false after connect")
	}
	s.Apply(client.Update{Fields: protocol.Fields{protocol.FieldAvailable: false}}, time.Now())
	if s.Available {
		t.Error("Available = true after availability loss")
	}
	if !s.Connected {
		t.Error("availability update should not touch Connected")
	}
}

func TestStateMergesAttributes(t *testing.T) {
	s := NewState()
	s.Apply(client.Update{
		Domain:    protocol.DomainControl,
		Attribute: protocol.AttrControl,
		Fields: protocol.Fields{
			protocol.FieldMode:         protocol.ModeHeat,
			protocol.FieldFanMode:      protocol.FanAuto,
			protocol.FieldHeatSetpoint: 20.5,
		},
	}, time.Now())
	// A later COS without the fan mode keeps the earlier value.
	s.Apply(client.Update{
		Domain:    protocol.DomainControl,
		Attribute: protocol.AttrControl,
		Fields:    protocol.Fields{protocol.FieldMode: protocol.ModeCool},
	}, time.Now())

	if got := s.Mode(); got != "cool" {
		t.Errorf("Mode() = %q, want cool", got)
	}
	if got := s.FanMode(); got != "auto" {
		t.Errorf("FanMode() = %q, want auto", got)
	}
	if got := s.Temperature(protocol.DomainControl, protocol.AttrControl, protocol.FieldHeatSetpoint); got != "20.5°C" {
		t.Errorf("heat setpoint = %q, want 20.5°C", got)
	}
	if got := s.Hold(); got != "-" {
		t.Errorf("Hold() = %q, want - before any scheduling update", got)
	}
}

func TestStateHumidityAbsent(t *testing.T) {
	s := NewState()
	s.Apply(client.Update{
		Domain:    protocol.DomainSensors,
		Attribute: protocol.AttrSensorsControlling,
		Fields:    protocol.Fields{protocol.FieldIndoorHumidityControllingSensorValue: nil},
	}, time.Now())

	if got := s.Humidity(protocol.DomainSensors, protocol.AttrSensorsControlling, protocol.FieldIndoorHumidityControllingSensorValue); got != "-" {
		t.Errorf("Humidity() = %q, want -", got)
	}
}

func TestStateEquipmentRunning(t *testing.T) {
	s := NewState()
	if got := s.EquipmentRunning(); got != "idle" {
		t.Errorf("EquipmentRunning() = %q, want idle", got)
	}

	s.Apply(client.Update{
		Domain:    protocol.DomainStatus,
		Attribute: protocol.AttrStatusHVAC,
		Fields: protocol.Fields{
			protocol.FieldHeatingEquipmentStatus: 2,
			protocol.FieldCoolingEquipmentStatus: 0,
			protocol.FieldFanStatus:              1,
		},
	}, time.Now())
	if got := s.EquipmentRunning(); got != "heating, fan" {
		t.Errorf("EquipmentRunning() = %q, want %q", got, "heating, fan")
	}
}

func TestStateModel(t *testing.T) {
	s := NewState()
	s.Apply(client.Update{
		Domain:    protocol.DomainIdentification,
		Attribute: protocol.AttrIdentificationRev,
		Fields:    protocol.Fields{protocol.FieldModelNumber: 1},
	}, time.Now())
	if got := s.Model(); got != "8810" {
		t.Errorf("Model() = %q, want 8810", got)
	}
}

func TestFormatUpdate(t *testing.T) {
	got := FormatUpdate(client.Update{Domain: protocol.DomainScheduling, Attribute: 4, Fields: protocol.Fields{protocol.FieldHold: 1}})
	if got != "scheduling/4 {hold=1}" {
		t.Errorf("FormatUpdate() = %q", got)
	}
	if got := FormatUpdate(status(true, false, false)); !strings.HasPrefix(got, "connection {connected=true") {
		t.Errorf("FormatUpdate(status) = %q", got)
	}
}
