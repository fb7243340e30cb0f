package client

import "github.com/muurk/aprilaire/internal/protocol"

// The methods below queue a single command. Responses arrive through
// OnUpdate; use Request or AwaitResponse to wait for one.

// ReadSensors queues a read of the controlling sensors.
func (c *Client) ReadSensors() { c.Send(protocol.ReadSensors()) }

// ReadInstalledSensors queues a read of every installed sensor.
func (c *Client) ReadInstalledSensors() { c.Send(protocol.ReadInstalledSensors()) }

// ReadControl queues a read of mode, fan mode and setpoints.
func (c *Client) ReadControl() { c.Send(protocol.ReadControl()) }

// ReadScheduling queues a read of the hold state.
func (c *Client) ReadScheduling() { c.Send(protocol.ReadScheduling()) }

// ReadMACAddress queues a read of the thermostat MAC address.
func (c *Client) ReadMACAddress() { c.Send(protocol.ReadMACAddress()) }

// ReadRevision queues a read of hardware, firmware and model information.
func (c *Client) ReadRevision() { c.Send(protocol.ReadRevision()) }

// ReadThermostatStatus queues a read of the installed equipment capabilities.
func (c *Client) ReadThermostatStatus() { c.Send(protocol.ReadThermostatStatus()) }

// ReadThermostatName queues a read of the name and location.
func (c *Client) ReadThermostatName() { c.Send(protocol.ReadThermostatName()) }

// ReadDehumidificationSetpoint queues a read of the dehumidification setpoint.
func (c *Client) ReadDehumidificationSetpoint() {
	c.Send(protocol.ReadDehumidificationSetpoint())
}

// ReadHumidificationSetpoint queues a read of the humidification setpoint.
func (c *Client) ReadHumidificationSetpoint() {
	c.Send(protocol.ReadHumidificationSetpoint())
}

// UpdateMode sets the thermostat mode.
func (c *Client) UpdateMode(mode int) { c.Send(protocol.UpdateMode(mode)) }

// UpdateFanMode sets the fan mode.
func (c *Client) UpdateFanMode(fanMode int) { c.Send(protocol.UpdateFanMode(fanMode)) }

// UpdateSetpoint sets the cool and heat setpoints in degrees Celsius. Zero
// leaves a setpoint unchanged.
func (c *Client) UpdateSetpoint(cool, heat float64) { c.Send(protocol.UpdateSetpoint(cool, heat)) }

// UpdateDehumidificationSetpoint sets the dehumidification setpoint in percent.
func (c *Client) UpdateDehumidificationSetpoint(setpoint int) {
	c.Send(protocol.UpdateDehumidificationSetpoint(setpoint))
}

// UpdateHumidificationSetpoint sets the humidification setpoint in percent.
func (c *Client) UpdateHumidificationSetpoint(setpoint int) {
	c.Send(protocol.UpdateHumidificationSetpoint(setpoint))
}

// UpdateFreshAir sets the fresh air mode and event.
func (c *Client) UpdateFreshAir(mode, event int) { c.Send(protocol.UpdateFreshAir(mode, event)) }

// UpdateAirCleaning sets the air cleaning mode and event.
func (c *Client) UpdateAirCleaning(mode, event int) { c.Send(protocol.UpdateAirCleaning(mode, event)) }

// SetHold sets the scheduling hold.
func (c *Client) SetHold(hold int) { c.Send(protocol.SetHold(hold)) }

// Sync asks the thermostat to push its full state.
func (c *Client) Sync() { c.Send(protocol.Sync()) }

// ConfigureCOS enables change-of-state notifications.
func (c *Client) ConfigureCOS() { c.Send(protocol.ConfigureCOS()) }
