package simulator

import (
	"testing"

	"github.com/muurk/aprilaire/internal/protocol"
)

func TestDeviceReads(t *testing.T) {
	tests := []struct {
		name   string
		req    *protocol.Packet
		field  string
		want   any
		action protocol.Action
	}{
		{"control", protocol.ReadControl(), protocol.FieldMode, 5, protocol.ActionReadResponse},
		{"dehumidification", protocol.ReadDehumidificationSetpoint(), protocol.FieldDehumidificationSetpoint, 55, protocol.ActionReadResponse},
		{"humidification", protocol.ReadHumidificationSetpoint(), protocol.FieldHumidificationSetpoint, 35, protocol.ActionReadResponse},
		{"thermostat status", protocol.ReadThermostatStatus(), protocol.FieldThermostatModes, 6, protocol.ActionReadResponse},
		{"sensors", protocol.ReadSensors(), protocol.FieldIndoorHumidityControllingSensorValue, 50, protocol.ActionReadResponse},
		{"scheduling", protocol.ReadScheduling(), protocol.FieldHold, 0, protocol.ActionReadResponse},
		{"revision", protocol.ReadRevision(), protocol.FieldModelNumber, 1, protocol.ActionReadResponse},
		{"mac", protocol.ReadMACAddress(), protocol.FieldMACAddress, "1:2:3:4:5:6", protocol.ActionReadResponse},
		{"name", protocol.ReadThermostatName(), protocol.FieldName, "Mock", protocol.ActionReadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDevice(DefaultIdentity)
			out := d.Handle(tt.req)
			if len(out) != 1 {
				t.Fatalf("Handle() returned %d messages, want 1", len(out))
			}
			resp := out[0]
			if resp.Action != tt.action {
				t.Errorf("action = %v, want %v", resp.Action, tt.action)
			}
			if resp.Key() != tt.req.Key() {
				t.Errorf("key = %v, want %v", resp.Key(), tt.req.Key())
			}
			if got := resp.Fields[tt.field]; got != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, got, tt.want)
			}
			if _, err := resp.Serialize(); err != nil {
				t.Errorf("Serialize() error = %v", err)
			}
		})
	}
}

func TestDeviceUnsupportedReadNacks(t *testing.T) {
	d := NewDevice(DefaultIdentity)
	out := d.Handle(protocol.ReadInstalledSensors())
	if len(out) != 1 || !out[0].IsNack() {
		t.Fatalf("Handle() = %v, want one NACK", out)
	}
	if out[0].NackAttribute != protocol.AttrSensorsInstalled {
		t.Errorf("NackAttribute = %d, want %d", out[0].NackAttribute, protocol.AttrSensorsInstalled)
	}
}

func TestDeviceControlWrite(t *testing.T) {
	d := NewDevice(DefaultIdentity)

	out := d.Handle(protocol.UpdateSetpoint(23.5, 0))
	if len(out) != 3 {
		t.Fatalf("Handle() returned %d messages, want 3", len(out))
	}
	control := out[0]
	if control.Action != protocol.ActionCOS || control.Key() != protocol.ReadControl().Key() {
		t.Fatalf("first message = %v, want control COS", control)
	}
	if cool, _ := control.Fields.Float(protocol.FieldCoolSetpoint); cool != 23.5 {
		t.Errorf("cool_setpoint = %v, want 23.5", cool)
	}
	if heat, _ := control.Fields.Float(protocol.FieldHeatSetpoint); heat != 20 {
		t.Errorf("heat_setpoint = %v, want 20 (unchanged)", heat)
	}
	if hold, _ := out[2].Fields.Int(protocol.FieldHold); hold != 1 {
		t.Errorf("hold after setpoint change = %d, want 1", hold)
	}

	out = d.Handle(protocol.UpdateMode(2))
	if mode, _ := out[0].Fields.Int(protocol.FieldMode); mode != 2 {
		t.Errorf("mode = %d, want 2", mode)
	}
	if heating, _ := out[1].Fields.Int(protocol.FieldHeatingEquipmentStatus); heating != 2 {
		t.Errorf("heating_equipment_status = %d, want 2", heating)
	}
	if hold, _ := out[2].Fields.Int(protocol.FieldHold); hold != 0 {
		t.Errorf("hold after mode change = %d, want 0", hold)
	}

	out = d.Handle(protocol.UpdateFanMode(3))
	if fan, _ := out[1].Fields.Int(protocol.FieldFanStatus); fan != 0 {
		t.Errorf("fan_status with circulate = %d, want 0", fan)
	}
}

func TestDeviceOtherWrites(t *testing.T) {
	tests := []struct {
		name  string
		req   *protocol.Packet
		field string
		want  int
	}{
		{"hold", protocol.SetHold(2), protocol.FieldHold, 2},
		{"dehumidification", protocol.UpdateDehumidificationSetpoint(60), protocol.FieldDehumidificationSetpoint, 60},
		{"humidification", protocol.UpdateHumidificationSetpoint(30), protocol.FieldHumidificationSetpoint, 30},
		{"fresh air", protocol.UpdateFreshAir(1, 3), protocol.FieldFreshAirEvent, 3},
		{"air cleaning", protocol.UpdateAirCleaning(2, 4), protocol.FieldAirCleaningMode, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDevice(DefaultIdentity)
			out := d.Handle(tt.req)
			if len(out) != 1 {
				t.Fatalf("Handle() returned %d messages, want 1", len(out))
			}
			if out[0].Action != protocol.ActionCOS {
				t.Errorf("action = %v, want cos", out[0].Action)
			}
			if got, _ := out[0].Fields.Int(tt.field); got != tt.want {
				t.Errorf("%s = %d, want %d", tt.field, got, tt.want)
			}
		})
	}
}

func TestDeviceSyncSendsStatusBurst(t *testing.T) {
	d := NewDevice(DefaultIdentity)
	out := d.Handle(protocol.Sync())
	if len(out) != 11 {
		t.Fatalf("Handle(sync) returned %d messages, want 11", len(out))
	}

	var sawControl bool
	for _, p := range out {
		if _, err := p.Serialize(); err != nil {
			t.Errorf("Serialize(%v) error = %v", p, err)
		}
		if p.Action == protocol.ActionCOS && p.Key() == protocol.ReadControl().Key() {
			sawControl = true
			if mode, _ := p.Fields.Int(protocol.FieldMode); mode != 1 {
				t.Errorf("burst control mode = %d, want 1", mode)
			}
		}
	}
	if !sawControl {
		t.Error("status burst has no control COS")
	}
}

func TestDeviceIgnoresCOSConfiguration(t *testing.T) {
	d := NewDevice(DefaultIdentity)
	if out := d.Handle(protocol.ConfigureCOS()); len(out) != 0 {
		t.Errorf("Handle(configure COS) = %v, want nothing", out)
	}
}
