package protocol

// Command constructors. Sequence numbers are assigned by the sender when a
// message is queued, so every constructor leaves Sequence at zero.

// Attribute numbers used by the command set.
const (
	AttrSetup              byte = 1
	AttrControl            byte = 1
	AttrDehumidification   byte = 3
	AttrHumidification     byte = 4
	AttrFreshAir           byte = 5
	AttrAirCleaning        byte = 6
	AttrThermostatStatus   byte = 7
	AttrSchedulingHold     byte = 4
	AttrSensorsInstalled   byte = 1
	AttrSensorsControlling byte = 2
	AttrStatusCOS          byte = 1
	AttrStatusSync         byte = 2
	AttrStatusHVAC         byte = 6
	AttrStatusIAQ          byte = 7
	AttrStatusError        byte = 8
	AttrIdentificationRev  byte = 1
	AttrIdentificationMAC  byte = 2
	AttrIdentificationText byte = 4
	AttrIdentificationName byte = 5
)

// cosFlags enables change-of-state reporting for every attribute the client
// tracks. Byte i corresponds to Status/1 flag i.
var cosFlags = []byte{
	1, 0, 0, 0, 0, 1, 0, 0, 0, 0,
	1, 0, 0, 0, 1, 0, 0, 0, 0, 0,
	1, 0, 1, 0, 1, 1, 1, 0, 0,
}

// ReadRequest builds a field-less read request.
func ReadRequest(domain Domain, attribute byte) *Packet {
	return NewPacket(ActionReadRequest, domain, attribute, nil)
}

// Write builds a write carrying fields in schema order.
func Write(domain Domain, attribute byte, fields Fields) *Packet {
	return NewPacket(ActionWrite, domain, attribute, fields)
}

// ReadSensors requests the controlling sensor readings.
func ReadSensors() *Packet { return ReadRequest(DomainSensors, AttrSensorsControlling) }

// ReadInstalledSensors requests every installed sensor reading.
func ReadInstalledSensors() *Packet { return ReadRequest(DomainSensors, AttrSensorsInstalled) }

// ReadControl requests mode, fan mode and setpoints.
func ReadControl() *Packet { return ReadRequest(DomainControl, AttrControl) }

// ReadScheduling requests the hold state.
func ReadScheduling() *Packet { return ReadRequest(DomainScheduling, AttrSchedulingHold) }

// ReadMACAddress requests the device MAC address.
func ReadMACAddress() *Packet { return ReadRequest(DomainIdentification, AttrIdentificationMAC) }

// ReadRevision requests hardware, firmware and model information.
func ReadRevision() *Packet { return ReadRequest(DomainIdentification, AttrIdentificationRev) }

// ReadThermostatStatus requests the installed equipment capabilities.
func ReadThermostatStatus() *Packet { return ReadRequest(DomainControl, AttrThermostatStatus) }

// ReadThermostatName requests the configured name and location.
func ReadThermostatName() *Packet { return ReadRequest(DomainIdentification, AttrIdentificationName) }

// ReadDehumidificationSetpoint requests the dehumidification setpoint.
func ReadDehumidificationSetpoint() *Packet {
	return ReadRequest(DomainControl, AttrDehumidification)
}

// ReadHumidificationSetpoint requests the humidification setpoint.
func ReadHumidificationSetpoint() *Packet {
	return ReadRequest(DomainControl, AttrHumidification)
}

// UpdateMode changes the thermostat mode. The other Control/1 fields are sent
// as zero, which the device treats as unchanged.
func UpdateMode(mode int) *Packet {
	return Write(DomainControl, AttrControl, Fields{
		FieldMode:         mode,
		FieldFanMode:      0,
		FieldHeatSetpoint: 0,
		FieldCoolSetpoint: 0,
	})
}

// UpdateFanMode changes the fan mode.
func UpdateFanMode(fanMode int) *Packet {
	return Write(DomainControl, AttrControl, Fields{
		FieldMode:         0,
		FieldFanMode:      fanMode,
		FieldHeatSetpoint: 0,
		FieldCoolSetpoint: 0,
	})
}

// UpdateSetpoint changes both setpoints. A zero setpoint leaves that one
// unchanged.
func UpdateSetpoint(cool, heat float64) *Packet {
	return Write(DomainControl, AttrControl, Fields{
		FieldMode:         0,
		FieldFanMode:      0,
		FieldHeatSetpoint: heat,
		FieldCoolSetpoint: cool,
	})
}

// UpdateDehumidificationSetpoint sets the dehumidification setpoint in percent.
func UpdateDehumidificationSetpoint(setpoint int) *Packet {
	return Write(DomainControl, AttrDehumidification, Fields{FieldDehumidificationSetpoint: setpoint})
}

// UpdateHumidificationSetpoint sets the humidification setpoint in percent.
func UpdateHumidificationSetpoint(setpoint int) *Packet {
	return Write(DomainControl, AttrHumidification, Fields{FieldHumidificationSetpoint: setpoint})
}

// UpdateFreshAir sets the fresh air mode and event.
func UpdateFreshAir(mode, event int) *Packet {
	return Write(DomainControl, AttrFreshAir, Fields{FieldFreshAirMode: mode, FieldFreshAirEvent: event})
}

// UpdateAirCleaning sets the air cleaning mode and event.
func UpdateAirCleaning(mode, event int) *Packet {
	return Write(DomainControl, AttrAirCleaning, Fields{FieldAirCleaningMode: mode, FieldAirCleaningEvent: event})
}

// SetHold sets the scheduling hold state.
func SetHold(hold int) *Packet {
	return Write(DomainScheduling, AttrSchedulingHold, Fields{FieldHold: hold})
}

// Sync asks the device to send its full state.
func Sync() *Packet {
	return Write(DomainStatus, AttrStatusSync, Fields{FieldSynced: 1})
}

// ConfigureCOS enables change-of-state notifications. Status/1 has no schema
// so the flag bytes are sent raw.
func ConfigureCOS() *Packet {
	p := NewPacket(ActionWrite, DomainStatus, AttrStatusCOS, nil)
	p.RawData = append([]byte(nil), cosFlags...)
	return p
}

// Bootstrap returns the messages sent after every new connection to
// repopulate device state from scratch.
func Bootstrap() []*Packet {
	return []*Packet{
		ReadMACAddress(),
		ReadThermostatStatus(),
		ReadControl(),
		ReadSensors(),
		ReadThermostatName(),
		ConfigureCOS(),
		ReadDehumidificationSetpoint(),
		ReadHumidificationSetpoint(),
		Sync(),
	}
}
