// Package bridge exposes a thermostat client to browsers over WebSocket.
//
// Every client.Update is encoded as a JSON Message and broadcast. Browsers
// joining late receive the most recent message for each attribute so they can
// render current state without waiting for the next change. Browsers may send
// "read" and "write" messages, which are queued on the thermostat connection.
//
//	{"type":"write","domain":"control","attribute":1,"fields":{"mode":2,"fan_mode":0,"heat_setpoint":0,"cool_setpoint":0}}
package bridge
