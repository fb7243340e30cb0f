// Aprilaire is a command-line client for Aprilaire thermostats speaking the
// binary automation protocol on TCP port 7001.
//
// It can probe a thermostat, watch it live, change its settings, expose it to
// browsers over WebSocket and decode frame captures.
//
// Usage:
//
//	aprilaire [command] [flags]
//
// See 'aprilaire --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/config"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	host        string
	port        int
	configPath  string
	logLevel    string
	captureFile string
	discover    bool
	timeout     time.Duration
)

// Loaded in PersistentPreRunE
var (
	registry     *config.Registry
	registryPath string
)

var rootCmd = &cobra.Command{
	Use:   "aprilaire",
	Short: "Aprilaire Thermostat Client",
	Long: `A client for Aprilaire thermostats using the local automation protocol.

The thermostat's automation interface must be enabled and reachable on the
local network (TCP port 7001 by default). Only one client may be connected to
a thermostat at a time.

Connection preferences and thermostats you have reached are remembered in a
YAML file (see --config).`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&host, "host", "", "Thermostat host or IP address")
	flags.IntVar(&port, "port", 0, "Thermostat automation port (default from config, else 7001)")
	flags.StringVar(&configPath, "config", "", "Config file path (default is the platform config dir)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	flags.StringVar(&captureFile, "capture", "", "Record raw frames to this CBOR capture file")
	flags.BoolVar(&discover, "discover", false, "Find the thermostat over mDNS instead of --host")
	flags.DurationVar(&timeout, "timeout", 0, "Response timeout (default from config, else 5s)")

	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeTo(logLevel, "stderr"); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var err error
	if configPath != "" {
		registryPath = configPath
		registry, err = config.Load(configPath)
	} else {
		registry, registryPath, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if logLevel == "" && registry.Preferences.LogLevel != "" {
		if err := logging.InitializeTo(registry.Preferences.LogLevel, "stderr"); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String("aprilaire"))
	},
}
