// Aprilaire-sim emulates a thermostat's automation port for development and
// testing.
//
// Each TCP connection gets its own simulated device that answers reads,
// applies writes and pushes a status burst on an interval, the way a real
// thermostat does with change-of-state reporting enabled.
//
// Usage:
//
//	aprilaire-sim serve [flags]
//
// See 'aprilaire-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
	"github.com/muurk/aprilaire/internal/simulator"
	"github.com/muurk/aprilaire/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aprilaire-sim",
	Short: "Aprilaire thermostat simulator",
	Long: `A standalone simulator for the Aprilaire automation protocol.

Point the aprilaire CLI (or any other client) at the simulator to exercise
reads, writes and unsolicited status reports without real hardware.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	host           string
	port           int
	statusInterval time.Duration
	advertise      bool
	instance       string
	name           string
	location       string
	mac            string
	model          int
	logLevel       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulator",
	Long: `Start listening for thermostat clients.

With --advertise the simulator registers itself over mDNS so 'aprilaire scan'
and 'aprilaire --discover' can find it.`,
	Example: `  # Listen on the default automation port
  aprilaire-sim serve

  # Faster status pushes and verbose logs
  aprilaire-sim serve --status-interval 5s --log-level debug

  # Advertise a named device over mDNS
  aprilaire-sim serve --advertise --name Upstairs --mac 00:11:22:33:44:55`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", protocol.DefaultPort, "Listen port")
	serveCmd.Flags().DurationVar(&statusInterval, "status-interval", simulator.DefaultStatusInterval, "Interval between unsolicited status bursts")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the simulator over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default \"Aprilaire <name>\")")
	serveCmd.Flags().StringVar(&name, "name", simulator.DefaultIdentity.Name, "Thermostat name")
	serveCmd.Flags().StringVar(&location, "location", simulator.DefaultIdentity.Location, "Thermostat location (postal code)")
	serveCmd.Flags().StringVar(&mac, "mac", simulator.DefaultIdentity.MAC, "MAC address reported to clients")
	serveCmd.Flags().IntVar(&model, "model", simulator.DefaultIdentity.Model, "Model number reported to clients")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	if _, err := protocol.ParseMAC(mac); err != nil {
		return err
	}
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	srv := simulator.New(simulator.Config{
		Host:           host,
		Port:           port,
		StatusInterval: statusInterval,
		Advertise:      advertise,
		Instance:       instance,
		Identity: simulator.Identity{
			Name:     name,
			Location: location,
			MAC:      mac,
			Model:    model,
		},
	})
	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String("aprilaire-sim"))
	},
}
