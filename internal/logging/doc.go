// Package logging provides structured logging for the Aprilaire tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the client, simulator and CLI. Logging is silent
// unless a level is passed on the command line or APRILAIRE_LOG_LEVEL is set.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Frame hex dumps, skipped frames, queue activity
//   - Info: Connections made and lost, re-reads, state changes
//   - Warn: Reconnect attempts, unexpected length fields
//   - Error: NACKs, device error codes, response timeouts
//
// # Structured Logging
//
//	logging.Info("Thermostat connected",
//	    zap.String("remote_addr", "192.168.1.40:7001"),
//	    zap.String("mac_address", "b4:82:55:50:93:6d"),
//	)
//
// Components that accept an injected *zap.Logger fall back to Named so that
// every line carries its origin:
//
//	log := logging.Named("client")
//	logging.LogFrame(log, "sent", remoteAddr, frame)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
