package protocol

import (
	"slices"
	"sort"
)

// ValueType selects how a field is laid out on the wire.
type ValueType int

const (
	TypeReserved            ValueType = iota // Placeholder byte, never decoded
	TypeInteger                              // 1 byte as-is
	TypeIntegerRequired                      // 1 byte, 0 means not present
	TypeTemperature                          // 1 byte, bit-packed
	TypeTemperatureRequired                  // 1 byte, bit-packed, 0 means not present
	TypeHumidity                             // 1 byte, valid 1..99
	TypeMACAddress                           // 6 bytes
	TypeText                                 // Length bytes plus one pad byte
)

func (t ValueType) String() string {
	switch t {
	case TypeReserved:
		return "reserved"
	case TypeInteger:
		return "integer"
	case TypeIntegerRequired:
		return "integer_required"
	case TypeTemperature:
		return "temperature"
	case TypeTemperatureRequired:
		return "temperature_required"
	case TypeHumidity:
		return "humidity"
	case TypeMACAddress:
		return "mac_address"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// FieldSpec describes one schema entry. Reserved entries have an empty Name.
type FieldSpec struct {
	Name   string
	Type   ValueType
	Length int // Character count, TypeText only
}

// Width returns the number of bytes the field occupies on the wire.
func (f FieldSpec) Width() int {
	switch f.Type {
	case TypeMACAddress:
		return 6
	case TypeText:
		return f.Length + 1
	default:
		return 1
	}
}

// AttributeKey identifies a schema entry.
type AttributeKey struct {
	Domain    Domain
	Attribute byte
}

func field(name string, t ValueType) FieldSpec { return FieldSpec{Name: name, Type: t} }

func text(name string, n int) FieldSpec { return FieldSpec{Name: name, Type: TypeText, Length: n} }

func reserved(n int) []FieldSpec { return make([]FieldSpec, n) }

func sensorPair(prefix string, t ValueType) []FieldSpec {
	return []FieldSpec{
		field(prefix+"_status", TypeInteger),
		field(prefix+"_value", t),
	}
}

// schema is shared by write, read request, read response and change of state
// messages. It is built once and never mutated.
var schema = buildSchema()

func buildSchema() map[AttributeKey][]FieldSpec {
	setup := reserved(44)
	setup[26] = field(FieldAwayAvailable, TypeInteger)

	identText := []FieldSpec{text(FieldLocation, 7), text(FieldName, 15)}

	return map[AttributeKey][]FieldSpec{
		{DomainSetup, 1}: setup,

		{DomainControl, 1}: {
			field(FieldMode, TypeIntegerRequired),
			field(FieldFanMode, TypeIntegerRequired),
			field(FieldHeatSetpoint, TypeTemperatureRequired),
			field(FieldCoolSetpoint, TypeTemperatureRequired),
		},
		{DomainControl, 3}: {field(FieldDehumidificationSetpoint, TypeHumidity)},
		{DomainControl, 4}: {field(FieldHumidificationSetpoint, TypeHumidity)},
		{DomainControl, 5}: {
			field(FieldFreshAirMode, TypeInteger),
			field(FieldFreshAirEvent, TypeInteger),
		},
		{DomainControl, 6}: {
			field(FieldAirCleaningMode, TypeInteger),
			field(FieldAirCleaningEvent, TypeInteger),
		},
		{DomainControl, 7}: {
			field(FieldThermostatModes, TypeInteger),
			field(FieldAirCleaningAvailable, TypeInteger),
			field(FieldVentilationAvailable, TypeInteger),
			field(FieldDehumidificationAvailable, TypeInteger),
			field(FieldHumidificationAvailable, TypeInteger),
		},

		{DomainScheduling, 4}: append([]FieldSpec{field(FieldHold, TypeInteger)}, reserved(9)...),

		{DomainSensors, 1}: slices.Concat(
			sensorPair("built_in_temperature_sensor", TypeTemperature),
			sensorPair("wired_remote_temperature_sensor", TypeTemperature),
			sensorPair("wired_outdoor_temperature_sensor", TypeTemperature),
			sensorPair("built_in_humidity_sensor", TypeHumidity),
			sensorPair("rat_sensor", TypeTemperature),
			sensorPair("lat_sensor", TypeTemperature),
			sensorPair("wireless_outdoor_temperature_sensor", TypeTemperature),
			sensorPair("wireless_outdoor_humidity_sensor", TypeHumidity),
		),
		{DomainSensors, 2}: slices.Concat(
			sensorPair("indoor_temperature_controlling_sensor", TypeTemperature),
			sensorPair("outdoor_temperature_controlling_sensor", TypeTemperature),
			sensorPair("indoor_humidity_controlling_sensor", TypeHumidity),
			sensorPair("outdoor_humidity_controlling_sensor", TypeHumidity),
		),

		{DomainStatus, 2}: {field(FieldSynced, TypeInteger)},
		{DomainStatus, 6}: {
			field(FieldHeatingEquipmentStatus, TypeInteger),
			field(FieldCoolingEquipmentStatus, TypeInteger),
			field(FieldProgressiveRecovery, TypeInteger),
			field(FieldFanStatus, TypeInteger),
		},
		{DomainStatus, 7}: {
			field(FieldDehumidificationStatus, TypeInteger),
			field(FieldHumidificationStatus, TypeInteger),
			field(FieldVentilationStatus, TypeInteger),
			field(FieldAirCleaningStatus, TypeInteger),
		},
		{DomainStatus, 8}: {field(FieldError, TypeInteger)},

		{DomainIdentification, 1}: {
			field(FieldHardwareRevision, TypeInteger),
			field(FieldFirmwareMajorRevision, TypeInteger),
			field(FieldFirmwareMinorRevision, TypeInteger),
			field(FieldProtocolMajorRevision, TypeInteger),
			field(FieldModelNumber, TypeInteger),
			field(FieldGainspanFirmwareMajorRevision, TypeInteger),
			field(FieldGainspanFirmwareMinorRevision, TypeInteger),
		},
		{DomainIdentification, 2}: {field(FieldMACAddress, TypeMACAddress)},
		{DomainIdentification, 4}: identText,
		{DomainIdentification, 5}: identText,
	}
}

// hasSchema reports whether the action class carries schema fields at all.
func hasSchema(a Action) bool {
	switch a {
	case ActionWrite, ActionReadRequest, ActionReadResponse, ActionCOS:
		return true
	}
	return false
}

func lookup(a Action, d Domain, attr byte) ([]FieldSpec, bool) {
	if !hasSchema(a) {
		return nil, false
	}
	specs, ok := schema[AttributeKey{d, attr}]
	return specs, ok
}

// LookupSchema returns a copy of the field layout for the given action,
// domain and attribute.
func LookupSchema(a Action, d Domain, attr byte) ([]FieldSpec, bool) {
	specs, ok := lookup(a, d, attr)
	if !ok {
		return nil, false
	}
	return slices.Clone(specs), true
}

// Attributes lists every schema-covered attribute ordered by domain then
// attribute number.
func Attributes() []AttributeKey {
	keys := make([]AttributeKey, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Domain != keys[j].Domain {
			return keys[i].Domain < keys[j].Domain
		}
		return keys[i].Attribute < keys[j].Attribute
	})
	return keys
}
