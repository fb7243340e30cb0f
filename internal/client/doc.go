// Package client maintains a resilient connection to one Aprilaire
// thermostat and exposes its automation protocol as queued commands,
// pushed updates and awaitable responses.
//
// # Architecture
//
// The client is split into three layers:
//   - supervisor: dials, retries forever on failure, reconnects after a
//     dropped link and optionally refreshes a healthy link on a timer
//   - session: owns one live socket, drains the outbound queue every flush
//     interval, parses inbound bytes and sends the bootstrap sequence
//   - Client: the public surface tying the queue, waiter table and
//     subscriber callback to whichever session is current
//
// Commands are never written directly. They are stamped with a sequence
// number, appended to a FIFO queue and written in order on the next flush.
// Anything queued while disconnected is discarded when the next connection
// is established, since the bootstrap sequence repopulates all state.
//
// # Usage Example
//
//	c, err := client.New(client.Config{
//	    Host: "192.168.1.50",
//	    OnUpdate: func(u client.Update) {
//	        fmt.Println(u.Domain, u.Attribute, u.Fields)
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c.Start()
//	defer c.Stop()
//
//	fields, err := c.Request(ctx, protocol.ReadControl(), 5*time.Second)
//	if errors.Is(err, client.ErrNoResponse) {
//	    // thermostat did not answer in time
//	}
//
// # Updates
//
// OnUpdate receives every parsed message except NACKs and the transient
// mode 1 change-of-state the thermostat emits while applying a control
// change; that one triggers a fresh control read instead. Connectivity
// changes arrive as updates with DomainNone and attribute 0 carrying the
// connected, stopped and reconnecting flags, or available=false when the
// socket drops.
//
// # Error Handling
//
// AwaitResponse and Request return ErrNoResponse on timeout and
// ErrSessionClosed when the connection drops while waiting. Connect
// failures are classified into a ConnectError and logged; they never stop
// the retry loop.
package client
