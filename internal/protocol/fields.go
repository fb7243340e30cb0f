package protocol

// Field names used as keys in Fields. The connectivity names are only produced
// by the client for synthetic state notifications.
const (
	FieldError        = "error"
	FieldAvailable    = "available"
	FieldConnected    = "connected"
	FieldConnecting   = "connecting"
	FieldReconnecting = "reconnecting"
	FieldStopped      = "stopped"

	FieldAwayAvailable = "away_available"

	FieldMode                      = "mode"
	FieldFanMode                   = "fan_mode"
	FieldHeatSetpoint              = "heat_setpoint"
	FieldCoolSetpoint              = "cool_setpoint"
	FieldDehumidificationSetpoint  = "dehumidification_setpoint"
	FieldHumidificationSetpoint    = "humidification_setpoint"
	FieldFreshAirMode              = "fresh_air_mode"
	FieldFreshAirEvent             = "fresh_air_event"
	FieldAirCleaningMode           = "air_cleaning_mode"
	FieldAirCleaningEvent          = "air_cleaning_event"
	FieldThermostatModes           = "thermostat_modes"
	FieldAirCleaningAvailable      = "air_cleaning_available"
	FieldVentilationAvailable      = "ventilation_available"
	FieldDehumidificationAvailable = "dehumidification_available"
	FieldHumidificationAvailable   = "humidification_available"

	FieldHold = "hold"

	FieldBuiltInTemperatureSensorStatus         = "built_in_temperature_sensor_status"
	FieldBuiltInTemperatureSensorValue          = "built_in_temperature_sensor_value"
	FieldWiredRemoteTemperatureSensorStatus     = "wired_remote_temperature_sensor_status"
	FieldWiredRemoteTemperatureSensorValue      = "wired_remote_temperature_sensor_value"
	FieldWiredOutdoorTemperatureSensorStatus    = "wired_outdoor_temperature_sensor_status"
	FieldWiredOutdoorTemperatureSensorValue     = "wired_outdoor_temperature_sensor_value"
	FieldBuiltInHumiditySensorStatus            = "built_in_humidity_sensor_status"
	FieldBuiltInHumiditySensorValue             = "built_in_humidity_sensor_value"
	FieldRATSensorStatus                        = "rat_sensor_status"
	FieldRATSensorValue                         = "rat_sensor_value"
	FieldLATSensorStatus                        = "lat_sensor_status"
	FieldLATSensorValue                         = "lat_sensor_value"
	FieldWirelessOutdoorTemperatureSensorStatus = "wireless_outdoor_temperature_sensor_status"
	FieldWirelessOutdoorTemperatureSensorValue  = "wireless_outdoor_temperature_sensor_value"
	FieldWirelessOutdoorHumiditySensorStatus    = "wireless_outdoor_humidity_sensor_status"
	FieldWirelessOutdoorHumiditySensorValue     = "wireless_outdoor_humidity_sensor_value"

	FieldIndoorTemperatureControllingSensorStatus  = "indoor_temperature_controlling_sensor_status"
	FieldIndoorTemperatureControllingSensorValue   = "indoor_temperature_controlling_sensor_value"
	FieldOutdoorTemperatureControllingSensorStatus = "outdoor_temperature_controlling_sensor_status"
	FieldOutdoorTemperatureControllingSensorValue  = "outdoor_temperature_controlling_sensor_value"
	FieldIndoorHumidityControllingSensorStatus     = "indoor_humidity_controlling_sensor_status"
	FieldIndoorHumidityControllingSensorValue      = "indoor_humidity_controlling_sensor_value"
	FieldOutdoorHumidityControllingSensorStatus    = "outdoor_humidity_controlling_sensor_status"
	FieldOutdoorHumidityControllingSensorValue     = "outdoor_humidity_controlling_sensor_value"

	FieldSynced                 = "synced"
	FieldHeatingEquipmentStatus = "heating_equipment_status"
	FieldCoolingEquipmentStatus = "cooling_equipment_status"
	FieldProgressiveRecovery    = "progressive_recovery"
	FieldFanStatus              = "fan_status"
	FieldDehumidificationStatus = "dehumidification_status"
	FieldHumidificationStatus   = "humidification_status"
	FieldVentilationStatus      = "ventilation_status"
	FieldAirCleaningStatus      = "air_cleaning_status"

	FieldHardwareRevision              = "hardware_revision"
	FieldFirmwareMajorRevision         = "firmware_major_revision"
	FieldFirmwareMinorRevision         = "firmware_minor_revision"
	FieldProtocolMajorRevision         = "protocol_major_revision"
	FieldModelNumber                   = "model_number"
	FieldGainspanFirmwareMajorRevision = "gainspan_firmware_major_revision"
	FieldGainspanFirmwareMinorRevision = "gainspan_firmware_minor_revision"
	FieldMACAddress                    = "mac_address"
	FieldLocation                      = "location"
	FieldName                          = "name"
)
