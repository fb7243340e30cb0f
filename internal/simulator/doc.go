// Package simulator implements a stand-in for an Aprilaire thermostat's
// automation port, for integration tests and development without hardware.
//
// The simulator accepts any number of TCP connections. Each connection gets
// an independent Device whose state starts in auto mode with the fan on
// auto, a 25°C cool setpoint and a 20°C heat setpoint.
//
// # Behaviour
//
//   - Read requests for supported attributes are answered with a read
//     response; anything else gets a NACK naming the attribute
//   - Writes are applied (zero control fields mean unchanged) and echoed as
//     change-of-state messages
//   - A sync write, and every StatusInterval, triggers the full status
//     burst. Its control message carries mode 1, which real thermostats
//     report while a change is in progress
//   - Outbound messages are queued and flushed every FlushInterval, the
//     same cadence the client uses
//
// # Usage Example
//
//	srv := simulator.New(simulator.Config{Port: 7001, Advertise: true})
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package simulator
