// Package config manages the user configuration file for the aprilaire tools.
//
// The file is YAML and holds connection preferences plus a registry of
// thermostats that have been reached, keyed by MAC address. Command-line
// flags always take precedence over preferences.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/aprilaire/config.yaml or $HOME/.config/aprilaire/config.yaml
//   - macOS: $HOME/.config/aprilaire/config.yaml
//   - Windows: %LOCALAPPDATA%\aprilaire\config.yaml
//
// # Example
//
//	version: 1
//	preferences:
//	  host: 192.168.1.50
//	  port: 7001
//	  reconnect_interval: 1h0m0s
//	  retry_interval: 10s
//	  response_timeout: 5s
//	  auto_discover: true
//	  discover_timeout: 10
//	devices:
//	  b4:82:55:50:93:6d:
//	    name: Upstairs
//	    model: 1
//	    last_host: 192.168.1.50
//	    last_port: 7001
//
// # Thread Safety
//
// Load and Save serialize file access with a package mutex; writes go to a
// temporary file that is renamed into place.
package config
