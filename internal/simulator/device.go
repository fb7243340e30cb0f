package simulator

import (
	"sync"

	"github.com/muurk/aprilaire/internal/protocol"
)

// Identity is the fixed identification a simulated thermostat reports.
type Identity struct {
	Name     string
	Location string
	MAC      string
	Model    int
}

// DefaultIdentity is reported when no identity is configured.
var DefaultIdentity = Identity{
	Name:     "Mock",
	Location: "02134",
	MAC:      "1:2:3:4:5:6",
	Model:    1,
}

// Device is the mutable state of one simulated thermostat. Responses are
// produced by Handle and StatusBurst; the caller stamps sequence numbers.
type Device struct {
	mu sync.Mutex

	identity Identity

	mode         int
	fanMode      int
	heatSetpoint float64
	coolSetpoint float64
	hold         int

	dehumidificationSetpoint int
	humidificationSetpoint   int
	freshAirMode             int
	freshAirEvent            int
	airCleaningMode          int
	airCleaningEvent         int
}

// NewDevice returns a thermostat in cooling mode with the fan on auto.
func NewDevice(id Identity) *Device {
	return &Device{
		identity:                 id,
		mode:                     5,
		fanMode:                  2,
		heatSetpoint:             20,
		coolSetpoint:             25,
		dehumidificationSetpoint: 55,
		humidificationSetpoint:   35,
	}
}

// Handle returns the messages the thermostat emits in reaction to p.
func (d *Device) Handle(p *protocol.Packet) []*protocol.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch p.Action {
	case protocol.ActionReadRequest:
		if resp := d.readLocked(p.Domain, p.Attribute); resp != nil {
			return []*protocol.Packet{resp}
		}
		return []*protocol.Packet{protocol.NewNack(p.Attribute)}
	case protocol.ActionWrite:
		return d.writeLocked(p)
	}
	return nil
}

// StatusBurst returns the full state as change-of-state messages. The
// control message reports mode 1, as a real thermostat does mid-update.
func (d *Device) StatusBurst() []*protocol.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusBurstLocked()
}

func (d *Device) statusBurstLocked() []*protocol.Packet {
	control := d.controlFieldsLocked()
	control[protocol.FieldMode] = 1

	return []*protocol.Packet{
		protocol.NewPacket(protocol.ActionReadResponse, protocol.DomainIdentification, protocol.AttrIdentificationMAC, d.macFieldsLocked()),
		cos(protocol.DomainControl, protocol.AttrControl, control),
		cos(protocol.DomainSensors, protocol.AttrSensorsControlling, sensorFields()),
		cos(protocol.DomainStatus, protocol.AttrStatusSync, protocol.Fields{protocol.FieldSynced: 1}),
		cos(protocol.DomainStatus, protocol.AttrStatusIAQ, iaqFields()),
		cos(protocol.DomainControl, protocol.AttrThermostatStatus, thermostatStatusFields()),
		cos(protocol.DomainSetup, protocol.AttrSetup, protocol.Fields{protocol.FieldAwayAvailable: 1}),
		cos(protocol.DomainScheduling, protocol.AttrSchedulingHold, d.holdFieldsLocked()),
		cos(protocol.DomainIdentification, protocol.AttrIdentificationRev, d.revisionFieldsLocked()),
		cos(protocol.DomainIdentification, protocol.AttrIdentificationText, d.textFieldsLocked()),
		cos(protocol.DomainStatus, protocol.AttrStatusHVAC, d.hvacFieldsLocked()),
	}
}

func (d *Device) readLocked(domain protocol.Domain, attr byte) *protocol.Packet {
	var fields protocol.Fields

	switch domain {
	case protocol.DomainControl:
		switch attr {
		case protocol.AttrControl:
			fields = d.controlFieldsLocked()
		case protocol.AttrDehumidification:
			fields = protocol.Fields{protocol.FieldDehumidificationSetpoint: d.dehumidificationSetpoint}
		case protocol.AttrHumidification:
			fields = protocol.Fields{protocol.FieldHumidificationSetpoint: d.humidificationSetpoint}
		case protocol.AttrThermostatStatus:
			fields = thermostatStatusFields()
		}
	case protocol.DomainSensors:
		if attr == protocol.AttrSensorsControlling {
			fields = sensorFields()
		}
	case protocol.DomainScheduling:
		if attr == protocol.AttrSchedulingHold {
			fields = d.holdFieldsLocked()
		}
	case protocol.DomainIdentification:
		switch attr {
		case protocol.AttrIdentificationRev:
			fields = d.revisionFieldsLocked()
		case protocol.AttrIdentificationMAC:
			fields = d.macFieldsLocked()
		case protocol.AttrIdentificationText, protocol.AttrIdentificationName:
			fields = d.textFieldsLocked()
		}
	}

	if fields == nil {
		return nil
	}
	return protocol.NewPacket(protocol.ActionReadResponse, domain, attr, fields)
}

func (d *Device) writeLocked(p *protocol.Packet) []*protocol.Packet {
	switch p.Key() {
	case protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrControl}:
		// Zero means unchanged. A mode change clears the hold, a setpoint
		// change sets it.
		if mode, ok := p.Fields.Int(protocol.FieldMode); ok && mode != 0 {
			d.mode = mode
			d.hold = 0
		}
		if fan, ok := p.Fields.Int(protocol.FieldFanMode); ok && fan != 0 {
			d.fanMode = fan
		}
		if heat, ok := p.Fields.Float(protocol.FieldHeatSetpoint); ok && heat != 0 {
			d.heatSetpoint = heat
			d.hold = 1
		}
		if cool, ok := p.Fields.Float(protocol.FieldCoolSetpoint); ok && cool != 0 {
			d.coolSetpoint = cool
			d.hold = 1
		}
		return []*protocol.Packet{
			cos(protocol.DomainControl, protocol.AttrControl, d.controlFieldsLocked()),
			cos(protocol.DomainStatus, protocol.AttrStatusHVAC, d.hvacFieldsLocked()),
			cos(protocol.DomainScheduling, protocol.AttrSchedulingHold, d.holdFieldsLocked()),
		}

	case protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrDehumidification}:
		if v, ok := p.Fields.Int(protocol.FieldDehumidificationSetpoint); ok {
			d.dehumidificationSetpoint = v
		}
		return []*protocol.Packet{cos(protocol.DomainControl, protocol.AttrDehumidification,
			protocol.Fields{protocol.FieldDehumidificationSetpoint: d.dehumidificationSetpoint})}

	case protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrHumidification}:
		if v, ok := p.Fields.Int(protocol.FieldHumidificationSetpoint); ok {
			d.humidificationSetpoint = v
		}
		return []*protocol.Packet{cos(protocol.DomainControl, protocol.AttrHumidification,
			protocol.Fields{protocol.FieldHumidificationSetpoint: d.humidificationSetpoint})}

	case protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrFreshAir}:
		d.freshAirMode, _ = p.Fields.Int(protocol.FieldFreshAirMode)
		d.freshAirEvent, _ = p.Fields.Int(protocol.FieldFreshAirEvent)
		return []*protocol.Packet{cos(protocol.DomainControl, protocol.AttrFreshAir, protocol.Fields{
			protocol.FieldFreshAirMode:  d.freshAirMode,
			protocol.FieldFreshAirEvent: d.freshAirEvent,
		})}

	case protocol.AttributeKey{Domain: protocol.DomainControl, Attribute: protocol.AttrAirCleaning}:
		d.airCleaningMode, _ = p.Fields.Int(protocol.FieldAirCleaningMode)
		d.airCleaningEvent, _ = p.Fields.Int(protocol.FieldAirCleaningEvent)
		return []*protocol.Packet{cos(protocol.DomainControl, protocol.AttrAirCleaning, protocol.Fields{
			protocol.FieldAirCleaningMode:  d.airCleaningMode,
			protocol.FieldAirCleaningEvent: d.airCleaningEvent,
		})}

	case protocol.AttributeKey{Domain: protocol.DomainScheduling, Attribute: protocol.AttrSchedulingHold}:
		if hold, ok := p.Fields.Int(protocol.FieldHold); ok {
			d.hold = hold
		}
		return []*protocol.Packet{cos(protocol.DomainScheduling, protocol.AttrSchedulingHold, d.holdFieldsLocked())}

	case protocol.AttributeKey{Domain: protocol.DomainStatus, Attribute: protocol.AttrStatusSync}:
		return d.statusBurstLocked()
	}
	return nil
}

func cos(domain protocol.Domain, attr byte, fields protocol.Fields) *protocol.Packet {
	return protocol.NewPacket(protocol.ActionCOS, domain, attr, fields)
}

func (d *Device) controlFieldsLocked() protocol.Fields {
	return protocol.Fields{
		protocol.FieldMode:         d.mode,
		protocol.FieldFanMode:      d.fanMode,
		protocol.FieldHeatSetpoint: d.heatSetpoint,
		protocol.FieldCoolSetpoint: d.coolSetpoint,
	}
}

func (d *Device) holdFieldsLocked() protocol.Fields {
	return protocol.Fields{protocol.FieldHold: d.hold}
}

func (d *Device) macFieldsLocked() protocol.Fields {
	return protocol.Fields{protocol.FieldMACAddress: d.identity.MAC}
}

func (d *Device) textFieldsLocked() protocol.Fields {
	return protocol.Fields{
		protocol.FieldLocation: d.identity.Location,
		protocol.FieldName:     d.identity.Name,
	}
}

func (d *Device) revisionFieldsLocked() protocol.Fields {
	return protocol.Fields{
		protocol.FieldHardwareRevision:              66,
		protocol.FieldFirmwareMajorRevision:         10,
		protocol.FieldFirmwareMinorRevision:         2,
		protocol.FieldProtocolMajorRevision:         15,
		protocol.FieldModelNumber:                   d.identity.Model,
		protocol.FieldGainspanFirmwareMajorRevision: 14,
		protocol.FieldGainspanFirmwareMinorRevision: 3,
	}
}

// hvacFieldsLocked derives equipment activity from the mode: heat (2) and
// emergency heat (4) run heating stages, cool (3) and auto (5) run cooling.
func (d *Device) hvacFieldsLocked() protocol.Fields {
	heating := map[int]int{2: 2, 4: 7}[d.mode]
	cooling := map[int]int{3: 2, 5: 2}[d.mode]
	fan := 0
	if d.fanMode == 1 || d.fanMode == 2 {
		fan = 1
	}
	return protocol.Fields{
		protocol.FieldHeatingEquipmentStatus: heating,
		protocol.FieldCoolingEquipmentStatus: cooling,
		protocol.FieldProgressiveRecovery:    0,
		protocol.FieldFanStatus:              fan,
	}
}

func sensorFields() protocol.Fields {
	return protocol.Fields{
		protocol.FieldIndoorTemperatureControllingSensorStatus:  0,
		protocol.FieldIndoorTemperatureControllingSensorValue:   25.0,
		protocol.FieldOutdoorTemperatureControllingSensorStatus: 0,
		protocol.FieldOutdoorTemperatureControllingSensorValue:  25.0,
		protocol.FieldIndoorHumidityControllingSensorStatus:     0,
		protocol.FieldIndoorHumidityControllingSensorValue:      50,
		protocol.FieldOutdoorHumidityControllingSensorStatus:    0,
		protocol.FieldOutdoorHumidityControllingSensorValue:     40,
	}
}

func iaqFields() protocol.Fields {
	return protocol.Fields{
		protocol.FieldDehumidificationStatus: 2,
		protocol.FieldHumidificationStatus:   2,
		protocol.FieldVentilationStatus:      2,
		protocol.FieldAirCleaningStatus:      2,
	}
}

func thermostatStatusFields() protocol.Fields {
	return protocol.Fields{
		protocol.FieldThermostatModes:           6,
		protocol.FieldAirCleaningAvailable:      1,
		protocol.FieldVentilationAvailable:      1,
		protocol.FieldDehumidificationAvailable: 1,
		protocol.FieldHumidificationAvailable:   1,
	}
}
